package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ryanm101/gameshelf/internal/auth"
	"github.com/ryanm101/gameshelf/internal/catalog"
	"github.com/ryanm101/gameshelf/internal/db"
	"github.com/ryanm101/gameshelf/internal/logging"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"confirm_password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

type rateRequest struct {
	Rating *float64 `json:"rating"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if req.Confirm == "" {
		req.Confirm = req.Password
	}
	form := auth.RegistrationForm{Username: req.Username, Email: req.Email, Password: req.Password, Confirm: req.Confirm}
	if err := form.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	taken, err := s.users.IsEmailTaken(ctx, form.Email)
	if err != nil {
		return err
	}
	if taken {
		return echo.NewHTTPError(http.StatusConflict, "email already registered")
	}

	id, err := s.users.Register(ctx, form.Username, form.Email, form.Password)
	if err != nil {
		return err
	}
	if id == db.NoUser {
		return echo.NewHTTPError(http.StatusConflict, "username or email already registered")
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

func (s *Server) handleLogin(c echo.Context) error {
	var form auth.LoginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if err := form.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := s.users.Login(c.Request().Context(), form.Email, form.Password)
	if err != nil {
		return err
	}
	if id == db.NoUser {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	token, err := s.issueToken(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, UserID: id})
}

func (s *Server) handleListGames(c echo.Context) error {
	page := 1
	if p := c.QueryParam("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid page")
		}
		page = n
	}

	res, err := s.games.SearchGames(c.Request().Context(), c.QueryParam("search"), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func gameID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid game id")
	}
	return id, nil
}

func (s *Server) handleGetGame(c echo.Context) error {
	id, err := gameID(c)
	if err != nil {
		return err
	}
	g, err := s.games.GameDetails(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

func (s *Server) handleMe(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	u, err := s.users.User(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	if u == nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (s *Server) handleRate(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	id, err := gameID(c)
	if err != nil {
		return err
	}

	var req rateRequest
	if err := c.Bind(&req); err != nil || req.Rating == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "rating is required")
	}
	if *req.Rating < 0 || *req.Rating > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 0 and 5")
	}

	if err := s.games.RateGame(c.Request().Context(), uid, id, *req.Rating); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// handleError maps repository failures onto status codes.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		he = statusFor(err)
	}
	if he.Code >= http.StatusInternalServerError {
		logging.Error("request failed", "uri", c.Request().RequestURI, "error", err)
	}

	msg := he.Message
	if m, ok := msg.(string); ok {
		msg = echo.Map{"error": m}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = c.JSON(he.Code, msg)
}

func statusFor(err error) *echo.HTTPError {
	var reqErr *catalog.RequestError
	switch {
	case errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound:
		return echo.NewHTTPError(http.StatusNotFound, "game not found")
	case errors.Is(err, catalog.ErrTransport), errors.Is(err, catalog.ErrStatus), errors.Is(err, catalog.ErrDecode):
		return echo.NewHTTPError(http.StatusBadGateway, "game catalog unavailable")
	case errors.Is(err, db.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
