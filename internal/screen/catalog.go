package screen

import "strings"

// Catalog is the i18n-catalog contract the navigator and handlers
// consume. Catalog loading/parsing belongs to the host; DefaultCatalog
// below is the English fallback the core ships so the module runs
// standalone.
type Catalog interface {
	// T returns the localized string for key, or key itself if absent.
	T(key string) string
	// TWith interpolates args into the localized string using `{name}`
	// placeholders.
	TWith(key string, args map[string]string) string
}

// defaultCatalog is a flat English key-to-string map; unknown keys
// render as themselves so a missing entry is visible but harmless.
type defaultCatalog map[string]string

func (c defaultCatalog) T(key string) string {
	if v, ok := c[key]; ok {
		return v
	}
	return key
}

func (c defaultCatalog) TWith(key string, args map[string]string) string {
	s := c.T(key)
	for k, v := range args {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return s
}

// DefaultCatalog returns the built-in English catalog used when no
// external i18n collaborator is wired in (e.g. in tests, or a host that
// hasn't loaded a locale file yet).
func DefaultCatalog() Catalog {
	return defaultCatalog{
		"welcome.prompt":              "\n[L]ogin  [R]egister  [G]uest  [Q]uit\n> ",
		"welcome.invalid_choice":      "Invalid selection.",
		"login.title":                 "=== Login ===",
		"login.username":              "Username",
		"login.password":              "Password",
		"login.locked_out":            "Too many failed attempts. Try again later.",
		"login.invalid_credentials":   "Invalid username or password.",
		"login.account_disabled":      "This account has been disabled.",
		"login.success":               "Welcome back, {username}!",
		"profile.last_login_short":    "Last login",
		"register.title":              "=== Register ===",
		"register.password_warning":   "WARNING: Telnet sends your password in plain text.",
		"register.username":           "Choose a username",
		"register.username_taken":     "That username is already taken.",
		"register.password":           "Choose a password (min 8 characters)",
		"register.confirm_password":   "Confirm password",
		"register.password_mismatch":  "Passwords do not match.",
		"register.password_too_short": "Password must be at least 8 characters.",
		"register.nickname":           "Nickname (blank to use username)",
		"register.success":            "Welcome, {username}! Your account has been created.",
		"register.failed":             "Registration failed.",
		"menu.login_required":         "You must be logged in to do that.",
		"menu.admin_required":         "You do not have permission to do that.",
		"menu.invalid_selection":      "Unknown selection: {input}",
		"session.goodbye":             "Goodbye!",
		"session.force_disconnected":  "Your session has been disconnected by an administrator.",
		"session.idle_timeout":        "Disconnected due to inactivity.",
		"error.database":              "Operation failed. Please try again.",
		"error.not_found":             "Not found.",
		"error.permission":            "Permission denied.",
		"error.rate_limited":          "Too many requests; try again in {seconds}s.",
		"common.press_enter":          "Press Enter to continue...",
		"common.quit_prompt":          "[Q]uit",
		"role.guest":                  "Guest",
		"role.member":                 "Member",
		"role.subop":                  "SubOp",
		"role.sysop":                  "SysOp",
	}
}
