package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/uiaee/portal/core"
	"github.com/uiaee/portal/core/admin"
	"github.com/uiaee/portal/core/student"
)

var (
	// appJWTConfig is the default JWT auth middleware config.
	appJWTConfig = middleware.JWTConfig{
		SigningKey:    []byte(core.Conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
	contextAdminKey   = "admin"
	contextStudentKey = "student"

	audience = "AEE Portal"
)

// Claims represents the authorization claims transmitted via a JWT.
// The subject is the account ID; Username is the admin username or the student matric number.
type Claims struct {
	jwt.StandardClaims
	Name      string `json:"name,omitempty"`
	Username  string `json:"username,omitempty"`
	IsAdmin   bool   `json:"is_admin,omitempty"`   // -> ADMIN PORTAL
	IsStudent bool   `json:"is_student,omitempty"` // -> STUDENT PORTAL
	Role      string `json:"role,omitempty"`
}

func newClaims(id int) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   strconv.Itoa(id),
			Audience:  audience,
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
	}
}

func GetAdminClaims(a admin.Admin) *Claims {
	claims := newClaims(a.ID)
	claims.Name = a.Name
	claims.Username = a.Username
	claims.IsAdmin = true
	claims.Role = a.Role
	return claims
}

func GetStudentClaims(s student.Student) *Claims {
	claims := newClaims(s.ID)
	claims.Name = s.Name
	claims.Username = s.MatricNumber
	claims.IsStudent = true
	return claims
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func (c Claims) accountID() int {
	id, _ := strconv.Atoi(c.Subject)
	return id
}

func (c Claims) person() core.Person {
	return core.Person{ID: c.Subject, Username: c.Username}
}

// contextHasRole reports whether the admin's role is at least one of roles.
func contextHasRole(ctx echo.Context, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	if claims, err := getContextClaims(ctx); err == nil {
		for _, role := range roles {
			if admin.RolePriority(claims.Role) >= admin.RolePriority(role) {
				return true
			}
		}
	}
	return false
}

func getContextAdmin(ctx echo.Context, svc *admin.Service) (admin.Admin, error) {
	if a, ok := ctx.Get(contextAdminKey).(admin.Admin); ok {
		return a, nil
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return admin.Admin{}, errors.Wrap(err, "getting context claims")
	}
	a, err := svc.GetByID(ctx.Request().Context(), claims.accountID())
	if err != nil {
		if core.IsNotFound(err) {
			return admin.Admin{}, errUnauthorized
		}
		return admin.Admin{}, errors.Wrap(err, "finding admin by ID")
	}
	if !a.IsActive {
		return admin.Admin{}, errAccountDeactivated
	}
	ctx.Set(contextAdminKey, a)
	return a, nil
}

func getContextStudent(ctx echo.Context, svc *student.Service) (student.Student, error) {
	if s, ok := ctx.Get(contextStudentKey).(student.Student); ok {
		return s, nil
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "getting context claims")
	}
	s, err := svc.GetByID(ctx.Request().Context(), claims.accountID())
	if err != nil {
		if core.IsNotFound(err) {
			return student.Student{}, errUnauthorized
		}
		return student.Student{}, errors.Wrap(err, "finding student by ID")
	}
	if !s.IsActive {
		return student.Student{}, errAccountDeactivated
	}
	ctx.Set(contextStudentKey, s)
	return s, nil
}
