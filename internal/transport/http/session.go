package http

import (
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	sessionName     = "session"
	sessionAdminKey = "admin"
)

// StartAdminSession marks the caller's session as logged in.
func StartAdminSession(c echo.Context, username string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[sessionAdminKey] = username
	return sess.Save(c.Request(), c.Response())
}

func EndAdminSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, sessionAdminKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// AdminSession returns the logged in admin of the session, if any.
func AdminSession(c echo.Context) (string, bool) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return "", false
	}
	name, ok := sess.Values[sessionAdminKey].(string)
	return name, ok && name != ""
}
