package handlers

import (
	"errors"
	"strings"
	"time"

	"lootmarket/internal/log"
	"lootmarket/internal/services"
	"lootmarket/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth          *services.AuthService
	Carts         *services.CartService
	SecureCookies bool
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": "", "Next": safeNext(c.Query("next"))})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c, h.SecureCookies)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	next := safeNext(c.FormValue("next"))
	fail := func() error {
		return render(c.Status(fiber.StatusUnauthorized), "login", fiber.Map{"Err": "Invalid email or password", "Next": next})
	}
	if _, ok := validate.Email(email); !ok {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return fail()
	}
	if !validate.Password(pass) {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_password_format"})
		return fail()
	}

	if _, err := h.Auth.Login(sid, email, pass); err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return fail()
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect(next)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c, h.SecureCookies)
	if err := h.Auth.Logout(sid); err != nil {
		log.Warn(c, "auth.logout.fail", err, nil)
	}
	// the cart belongs to the session that is ending
	if err := h.Carts.Discard(sid); err != nil {
		log.Warn(c, "cart.discard.fail", err, nil)
	}
	c.Cookie(sidCookieFor("", h.SecureCookies, time.Now().Add(-1*time.Hour)))
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/")
}

func (h *AuthHandler) SignupForm(c *fiber.Ctx) error {
	return render(c, "signup", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	sid := ensureSID(c, h.SecureCookies)
	form := fiber.Map{"Name": c.FormValue("name"), "Email": c.FormValue("email")}
	bad := func(msg, field string) error {
		log.Security(c, "validation.fail", map[string]any{"field": field, "form": "signup"})
		form["Err"] = msg
		return render(c.Status(fiber.StatusBadRequest), "signup", form)
	}

	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		return bad("Enter your name", "name")
	}
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		return bad("Enter a valid email", "email")
	}
	pass := c.FormValue("password")
	if !validate.Password(pass) {
		return bad("Password needs 8+ characters with upper and lower case, a digit and a symbol", "password")
	}
	if pass != c.FormValue("confirm") {
		return bad("Passwords do not match", "confirm")
	}

	u, err := h.Auth.SignUp(sid, name, email, pass)
	if errors.Is(err, services.ErrEmailTaken) {
		form["Err"] = "That email is already registered"
		log.Security(c, "auth.signup.fail", map[string]any{"email": email, "reason": "taken"})
		return render(c.Status(fiber.StatusConflict), "signup", form)
	}
	if err != nil {
		log.Error(c, "auth.signup.fail", err, nil)
		return err
	}
	log.Audit(c, "auth.signup", map[string]any{"user_id": u.ID, "email": u.Email})
	return c.Redirect("/")
}
