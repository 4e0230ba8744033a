package router

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"tasktracker/internal/config"
	apperrors "tasktracker/internal/errors"
	"tasktracker/internal/handler"
	"tasktracker/internal/service"
)

const authErrorKey = "auth_error"

// Register wires middleware and the full route table.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *zap.Logger,
	authService service.AuthService,
	authHandler *handler.AuthHandler,
	taskHandler *handler.TaskHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)

	// Secured routes (require a bearer token). Group middleware also wraps
	// echo's catch-all, so unknown /api paths answer 401 before 404.
	secured := e.Group("/api", jwtMiddleware(authService, true))
	secured.GET("/my-tasks", taskHandler.ListAll)
	secured.GET("/my-completed-tasks", taskHandler.ListCompleted)
	secured.POST("/create-task", taskHandler.Create)
	secured.PATCH("/my-tasks/:id/description", taskHandler.UpdateDescription)
	secured.PATCH("/my-tasks/:id/completed-toggle", taskHandler.ToggleCompleted)
	secured.PATCH("/my-tasks/:id/title", taskHandler.UpdateTitle)
	secured.PATCH("/my-tasks/:id/priority", taskHandler.UpdatePriority)

	// Delete routes may be configured to accept anonymous callers, who can
	// never own a task and so always get a 404.
	deleteAuth := jwtMiddleware(authService, cfg.DeleteNeedsAuth)
	e.DELETE("/api/delete:id", taskHandler.Delete, deleteAuth)
	e.DELETE("/api/my-tasks/:id", taskHandler.Delete, deleteAuth)
}

// jwtMiddleware authenticates the bearer token through authService and
// stores the resolved *model.User under handler.UserContextKey. When
// required is false, requests without an Authorization header pass
// through anonymously.
func jwtMiddleware(authService service.AuthService, required bool) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		Skipper: func(c echo.Context) bool {
			return !required && c.Request().Header.Get(echo.HeaderAuthorization) == ""
		},
		ContextKey:  handler.UserContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			user, err := authService.Authenticate(c.Request().Context(), token)
			if err != nil {
				c.Set(authErrorKey, err)
				return nil, err
			}
			return user, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			authErr, ok := c.Get(authErrorKey).(error)
			if !ok {
				// the extractor failed before any token was parsed
				authErr = apperrors.Unauthorized("Missing Authorization Header")
			}
			httpErr := apperrors.MapErrorToHTTP(authErr)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		},
	})
}

func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Status >= http.StatusInternalServerError {
				log.Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns a validator that reports fields by their json name.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
