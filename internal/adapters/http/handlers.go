package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/foodcart/core/internal/application/services"
	"github.com/foodcart/core/internal/domain/entities"
	"github.com/foodcart/core/internal/infrastructure/logger"
	"github.com/foodcart/core/internal/ports"
)

// ContextKeyUsername holds the username of a verified bearer token.
const ContextKeyUsername = "username"

const (
	msgCredentialsRequired = "Username and password are required"
	msgInvalidCredentials  = "Invalid credentials"
	msgUsernameTaken       = "Username already exists"
	msgUsernameRequired    = "Username is required"
	msgCartUpdateRequired  = "Username, item, and quantity are required"
	msgServerError         = "Server error"
	msgCartReadError       = "Error reading cart"
	msgCartUpdateError     = "Error updating cart"
	msgForbidden           = "Not allowed to access this cart"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles user login
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err, msgCredentialsRequired))
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if errors.Is(err, entities.ErrInvalidCredentials) {
		h.logger.LogSecurityEvent("login_failed", req.Username, c.RealIP(), nil)
		return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidCredentials)
	}
	if err != nil {
		h.logger.Errorw("Login error", "error", err, "username", req.Username)
		return echo.NewHTTPError(http.StatusInternalServerError, msgServerError).SetInternal(err)
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Success:   true,
		Token:     response.Token,
		TokenType: response.TokenType,
		ExpiresIn: response.ExpiresIn,
	})
}

// Register handles account creation
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err, msgCredentialsRequired))
	}

	err := h.authService.Register(c.Request().Context(), req)
	if errors.Is(err, entities.ErrUsernameTaken) {
		return echo.NewHTTPError(http.StatusBadRequest, msgUsernameTaken)
	}
	if err != nil {
		h.logger.Errorw("Registration error", "error", err, "username", req.Username)
		return echo.NewHTTPError(http.StatusInternalServerError, msgServerError).SetInternal(err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// CatalogHandler serves the food catalog
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListFoodItems returns the full catalog
func (h *CatalogHandler) ListFoodItems(c echo.Context) error {
	return c.JSON(http.StatusOK, FoodItemsResponse{
		Success:   true,
		FoodItems: h.catalogService.List(),
	})
}

// CartHandler handles cart-related requests
type CartHandler struct {
	cartService *services.CartService
	logger      *logger.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *services.CartService, logger *logger.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// GetCart returns the cart addressed by the :username path parameter
func (h *CartHandler) GetCart(c echo.Context) error {
	username := c.Param("username")
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, msgUsernameRequired)
	}
	if err := authorizeUser(c, username); err != nil {
		return err
	}

	cart, err := h.cartService.GetCart(c.Request().Context(), username)
	if err != nil {
		h.logger.Errorw("Error reading cart", "error", err, "username", username)
		return echo.NewHTTPError(http.StatusInternalServerError, msgCartReadError).SetInternal(err)
	}

	return c.JSON(http.StatusOK, CartResponse{Success: true, Cart: cart})
}

// UpdateItem sets the quantity of a single item
func (h *CartHandler) UpdateItem(c echo.Context) error {
	var req ports.UpdateCartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgCartUpdateRequired)
	}
	if err := authorizeUser(c, req.Username); err != nil {
		return err
	}

	cart, err := h.cartService.UpdateItem(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Error updating cart", "error", err, "username", req.Username)
		return echo.NewHTTPError(http.StatusInternalServerError, msgCartUpdateError).SetInternal(err)
	}

	return c.JSON(http.StatusOK, CartResponse{Success: true, Cart: cart})
}

// ReplaceCart overwrites the whole cart of the user named in the body
func (h *CartHandler) ReplaceCart(c echo.Context) error {
	var req ports.ReplaceCartRequest
	if err := bindAndValidate(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgUsernameRequired)
	}
	if err := authorizeUser(c, req.Username); err != nil {
		return err
	}

	cart, err := h.cartService.ReplaceCart(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Error replacing cart", "error", err, "username", req.Username)
		return echo.NewHTTPError(http.StatusInternalServerError, msgCartUpdateError).SetInternal(err)
	}

	return c.JSON(http.StatusOK, CartResponse{Success: true, Cart: cart})
}

// Purchase clears the cart of the user named in the body
func (h *CartHandler) Purchase(c echo.Context) error {
	var req ports.PurchaseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgUsernameRequired)
	}
	if err := authorizeUser(c, req.Username); err != nil {
		return err
	}

	receipt, err := h.cartService.Purchase(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Error completing purchase", "error", err, "username", req.Username)
		return echo.NewHTTPError(http.StatusInternalServerError, msgCartUpdateError).SetInternal(err)
	}

	return c.JSON(http.StatusOK, PurchaseResponse{
		Success: true,
		Items:   receipt.Items,
		Total:   receipt.Total,
		Unknown: receipt.Unknown,
	})
}

// UserHandler handles user-related requests
type UserHandler struct {
	userService *services.UserService
	logger      *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// ListUsers returns registered usernames
func (h *UserHandler) ListUsers(c echo.Context) error {
	names, err := h.userService.ListUsernames(c.Request().Context())
	if err != nil {
		h.logger.Errorw("Error listing users", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgServerError).SetInternal(err)
	}

	return c.JSON(http.StatusOK, UsersResponse{Success: true, Users: names})
}

// Utility functions

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

// validationMessage keeps the fixed "required" message for missing fields
// and describes any other rule violation.
func validationMessage(err error, required string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() != "required" {
				return fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field()))
			}
		}
	}
	return required
}

// authorizeUser rejects requests whose verified token names another user.
// Requests without a token pass unless the server requires authentication,
// in which case the middleware has already rejected them.
func authorizeUser(c echo.Context, username string) error {
	claimed, ok := c.Get(ContextKeyUsername).(string)
	if !ok {
		return nil
	}
	if claimed != username {
		return echo.NewHTTPError(http.StatusForbidden, msgForbidden)
	}
	return nil
}
