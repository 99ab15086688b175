package main

import (
	"context"
	"fmt"
	"time"

	"bookdrop/library-api/api"
	"bookdrop/library-api/config"
	"bookdrop/library-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	a, err := api.NewRouter()
	if err != nil {
		panic(err)
	}

	if config.SeedAdmin() {
		_, err := a.Auth.RegisterAdmin(
			viper.GetString("admin.name"),
			viper.GetString("admin.email"),
			viper.GetString("admin.password"),
		)
		if err != nil {
			panic(err)
		}

		zap.L().Info("Admin account created", zap.String("email", viper.GetString("admin.email")))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service.AttemptCleanup(ctx,
		time.Duration(viper.GetInt("cleanup.interval_minutes"))*time.Minute,
		time.Duration(viper.GetInt("cleanup.grace_minutes"))*time.Minute,
		a.DB)

	reminder := service.NewReminder(a.DB, a.Mailer)
	if err := reminder.Start(viper.GetString("reminder.cron")); err != nil {
		panic(err)
	}
	defer reminder.Stop()

	zap.L().Info("Server starting")

	err = a.Router.Run(fmt.Sprintf(":%d", viper.GetInt("host.port")))
	if err != nil {
		panic(err)
	}
}
