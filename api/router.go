// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"bookdrop/library-api/db"
	"bookdrop/library-api/internal/auth"
	"bookdrop/library-api/internal/service"
	"bookdrop/library-api/middleware"
	"bookdrop/library-api/security"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type API struct {
	DB     *gorm.DB
	Router *gin.Engine
	Auth   *auth.Service
	Tokens *security.TokenIssuer
	Mailer *service.SMTPMailer
}

func NewRouter() (*API, error) {
	a := &API{}

	db, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = db

	makeLogger()

	a.Tokens = security.NewTokenIssuer(
		viper.GetString("jwt.secret"),
		time.Duration(viper.GetInt("jwt.expiry_hours"))*time.Hour,
	)
	a.Mailer = service.NewSMTPMailer()

	a.Auth = auth.NewService(
		db,
		security.NewArgon(),
		a.Tokens,
		a.Mailer,
		time.Duration(viper.GetInt("otp.ttl_minutes"))*time.Minute,
		time.Duration(viper.GetInt("reset.ttl_minutes"))*time.Minute,
		viper.GetString("host.frontend_url"),
	)

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{viper.GetString("host.frontend_url")},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	authed := middleware.NewAuthMiddleware(db, a.Tokens)
	admin := middleware.RequireRoles("Admin")
	limited := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 5,
		Burst:             10,
	})

	main := router.Group("/api/v1", middleware.BodySizeLimiter(1<<20))

	authGrp := main.Group("/auth", limited)
	{
		// POST /api/v1/auth/register		-> Creates a pending registration and mails an OTP
		authGrp.POST("/register", a.AuthRegister)

		// POST /api/v1/auth/verify-otp		-> Confirms the OTP and issues a session
		authGrp.POST("/verify-otp", a.AuthVerifyOTP)

		// POST /api/v1/auth/login		-> Logs in a verified user
		authGrp.POST("/login", a.AuthLogin)

		// GET /api/v1/auth/logout		-> Clears the session cookie
		authGrp.GET("/logout", authed, a.AuthLogout)

		// GET /api/v1/auth/me			-> Returns the authenticated user
		authGrp.GET("/me", authed, a.AuthMe)

		// POST /api/v1/auth/password/forgot	-> Mails a password reset link
		authGrp.POST("/password/forgot", a.AuthPasswordForgot)

		// PUT /api/v1/auth/password/reset/:token -> Consumes a reset token
		authGrp.PUT("/password/reset/:token", a.AuthPasswordReset)

		// PUT /api/v1/auth/password/update	-> Changes the password of a logged in user
		authGrp.PUT("/password/update", authed, a.AuthPasswordUpdate)
	}

	book := main.Group("/book")
	{
		// POST /api/v1/book/admin/add		-> Adds a book to the catalog
		book.POST("/admin/add", authed, admin, a.BookAdd)

		// GET /api/v1/book/all			-> Lists the whole catalog
		book.GET("/all", authed, cacheFor(30), a.BookList)

		// DELETE /api/v1/book/delete/:id	-> Removes a book from the catalog
		book.DELETE("/delete/:id", authed, admin, a.BookDelete)
	}

	borrow := main.Group("/borrow")
	{
		// POST /api/v1/borrow/record-borrow-book/:id	-> Checks a book out to a user
		borrow.POST("/record-borrow-book/:id", authed, admin, a.BorrowRecord)

		// GET /api/v1/borrow/borrowed-books-by-users	-> All borrow records, admin view
		borrow.GET("/borrowed-books-by-users", authed, admin, a.BorrowListAdmin)

		// GET /api/v1/borrow/my-borrowed-books		-> Borrow records of the caller
		borrow.GET("/my-borrowed-books", authed, a.BorrowListMine)

		// PUT /api/v1/borrow/return-borrowed-book/:bookId -> Records a return and the fine
		borrow.PUT("/return-borrowed-book/:bookId", authed, admin, a.BorrowReturn)
	}

	user := main.Group("/user")
	{
		// GET /api/v1/user/all			-> Lists all verified users
		user.GET("/all", authed, admin, a.UserList)

		// POST /api/v1/user/add/new-admin	-> Registers a pre-verified admin account
		user.POST("/add/new-admin", authed, admin, a.UserAddAdmin)
	}

	return a, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
