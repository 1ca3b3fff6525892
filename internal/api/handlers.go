package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/drfdemo/userapi/internal/users"
)

// Response details
const (
	MsgNotFound      = "Not found."
	MsgServerError   = "A server error occurred."
	MsgBodyTooLarge  = "Request body too large."
	MsgNoData        = "No data provided"
	nonFieldErrorKey = "non_field_errors"
)

// ids in the path are unsigned decimal integers; anything else cannot exist
var idPattern = regexp.MustCompile(`^[0-9]+$`)

func parseID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	if !idPattern.MatchString(raw) {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// errBadBody is returned by readBody with the response already chosen
type errBadBody struct {
	status int
	body   gin.H
}

func (e *errBadBody) Error() string {
	return fmt.Sprintf("bad request body (%d)", e.status)
}

// readBody decodes the request body into a field mapping. An empty body is an
// empty mapping, so validation reports the missing fields. Anything after the
// first JSON value is a parse error.
func readBody(c *gin.Context) (map[string]any, error) {
	data, err := c.GetRawData()
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, &errBadBody{
				status: http.StatusRequestEntityTooLarge,
				body:   gin.H{"detail": MsgBodyTooLarge},
			}
		}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, &errBadBody{
			status: http.StatusBadRequest,
			body:   gin.H{"detail": "JSON parse error - " + err.Error()},
		}
	}

	switch v := body.(type) {
	case map[string]any:
		return v, nil
	case nil:
		return nil, &errBadBody{
			status: http.StatusBadRequest,
			body:   gin.H{nonFieldErrorKey: []string{MsgNoData}},
		}
	default:
		return nil, &errBadBody{
			status: http.StatusBadRequest,
			body: gin.H{nonFieldErrorKey: []string{
				fmt.Sprintf("Invalid data. Expected a dictionary, but got %s.", jsonTypeName(v)),
			}},
		}
	}
}

func jsonTypeName(v any) string {
	switch t := v.(type) {
	case []any:
		return "list"
	case string:
		return "str"
	case float64:
		if t == math.Trunc(t) {
			return "int"
		}
		return "float"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// respondError maps service errors onto status codes
func respondError(as *AppState, c *gin.Context, operation string, err error) {
	var badBody *errBadBody
	if errors.As(err, &badBody) {
		c.JSON(badBody.status, badBody.body)
		return
	}

	if validationErr, ok := users.AsValidationError(err); ok {
		as.Logger.Debug("User validation failed",
			zap.String("operation", operation),
			zap.Any("fields", validationErr.Fields))
		c.JSON(http.StatusBadRequest, validationErr.Fields)
		return
	}

	if users.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"detail": MsgNotFound})
		return
	}

	as.Logger.Error("Failed to "+operation,
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"detail": MsgServerError})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": MsgNotFound})
}

func listUsers(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := as.UserService.ListUsers(c.Request.Context())
		if err != nil {
			respondError(as, c, "list users", err)
			return
		}

		c.JSON(http.StatusOK, users.SerializeMany(list))
	}
}

func createUser(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := readBody(c)
		if err != nil {
			respondError(as, c, "create user", err)
			return
		}

		user, err := as.UserService.CreateUser(c.Request.Context(), raw)
		if err != nil {
			respondError(as, c, "create user", err)
			return
		}

		as.Logger.Info("User created", zap.Int64("user_id", user.ID))
		c.JSON(http.StatusCreated, users.Serialize(user))
	}
}

func getUser(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			notFound(c)
			return
		}

		user, err := as.UserService.GetUser(c.Request.Context(), id)
		if err != nil {
			respondError(as, c, "get user", err)
			return
		}

		c.JSON(http.StatusOK, users.Serialize(user))
	}
}

func updateUser(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			notFound(c)
			return
		}

		ctx := c.Request.Context()
		raw, err := readBody(c)
		if err != nil {
			// an unknown id wins over an unreadable body
			if _, getErr := as.UserService.GetUser(ctx, id); getErr != nil {
				respondError(as, c, "update user", getErr)
				return
			}
			respondError(as, c, "update user", err)
			return
		}

		user, err := as.UserService.UpdateUser(ctx, id, raw)
		if err != nil {
			respondError(as, c, "update user", err)
			return
		}

		as.Logger.Info("User updated", zap.Int64("user_id", user.ID))
		c.JSON(http.StatusOK, users.Serialize(user))
	}
}

func deleteUser(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			notFound(c)
			return
		}

		if err := as.UserService.DeleteUser(c.Request.Context(), id); err != nil {
			respondError(as, c, "delete user", err)
			return
		}

		as.Logger.Info("User deleted", zap.Int64("user_id", id))
		c.Status(http.StatusNoContent)
	}
}
