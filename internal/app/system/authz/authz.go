// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/selecthub/internal/app/system/auth"
	"github.com/dalemusser/selecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's Mongo ObjectID, display name, authority
// level, and a found flag. If no user is present in context or the user ID
// is malformed, it returns NilObjectID, "", LevelUnresolved, false, so
// ok=true always means a valid, authenticated user with a valid ObjectID.
//
// The level returned here is the session's cached copy, used only for
// request routing decisions; tier operations re-resolve the authoritative
// level from the directory.
func UserCtx(r *http.Request) (userID primitive.ObjectID, name string, level models.AuthorityLevel, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, "", models.LevelUnresolved, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// malformed user ID in session; fail closed
		return primitive.NilObjectID, "", models.LevelUnresolved, false
	}
	lvl := models.AuthorityLevel(user.Level)
	if lvl < models.LevelStaff || lvl > models.LevelExecutive {
		lvl = models.LevelUnresolved
	}
	return userID, user.Name, lvl, true
}

// IsExecutive reports whether the current request's user holds top-tier
// authority.
func IsExecutive(r *http.Request) bool {
	_, _, level, ok := UserCtx(r)
	return ok && level == models.LevelExecutive
}

// AtLeast reports whether the current request's user holds the given
// authority level or higher.
func AtLeast(r *http.Request, min models.AuthorityLevel) bool {
	_, _, level, ok := UserCtx(r)
	return ok && level >= min
}
