package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/pkg/jwt"
)

// Locals keys para UserID y roles en Fiber.
const (
	LocalUserID = "user_id"
	LocalRoles  = "roles"
)

// AuthMiddleware valida el Bearer Token JWT y deja UserID y roles en c.Locals.
// Los roles desconocidos del token se descartan.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		userID, roles, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalRoles, entity.ParseRoles(roles))
		return c.Next()
	}
}

// RequireRole deja pasar si el usuario tiene alguno de los roles indicados.
// Debe usarse DESPUÉS de AuthMiddleware. Sin roles en el token responde 401; con otros roles, 403.
func RequireRole(allowed ...entity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles := GetRoles(c)
		if len(roles) == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no incluye roles"})
		}
		for _, have := range roles {
			for _, want := range allowed {
				if have == want {
					return c.Next()
				}
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para este recurso"})
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetRoles devuelve los roles válidos del token.
func GetRoles(c *fiber.Ctx) []entity.Role {
	roles, _ := c.Locals(LocalRoles).([]entity.Role)
	return roles
}
