package routing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kalyan021004/todoboard/internal/api/models/common"
	"github.com/kalyan021004/todoboard/internal/config"
)

var notFoundErr = common.ApiError{
	StatusCode: http.StatusNotFound,
	Body: common.Body{
		Message: "No such route.",
	},
}

var noMethodErr = common.ApiError{
	StatusCode: http.StatusMethodNotAllowed,
	Body: common.Body{
		Message: "No such route.",
	},
}

// NewRoutesGroup builds the router group a handler mounts its routes on,
// guarded by basic auth when any users are configured.
func NewRoutesGroup(auth *config.Auth, ginEngine *gin.Engine, rootPath string) *gin.RouterGroup {
	accounts := make(gin.Accounts)
	if auth != nil {
		for _, bAuthUser := range auth.BasicAuth {
			accounts[bAuthUser.Name] = bAuthUser.Password
		}
	}
	if len(accounts) > 0 {
		return ginEngine.Group(rootPath, gin.BasicAuth(accounts))
	}
	return ginEngine.Group(rootPath)
}

func NoRoute(c *gin.Context) {
	c.JSON(notFoundErr.StatusCode, notFoundErr.Body)
}

func NoMethod(c *gin.Context) {
	c.JSON(noMethodErr.StatusCode, noMethodErr.Body)
}

func HandleApiErr(c *gin.Context, apiError *common.ApiError) {
	c.JSON(apiError.StatusCode, apiError.Body)
}

func HandleJsonSerdesErr(c *gin.Context, err error) {
	errResp := common.ApiError{
		StatusCode: http.StatusBadRequest,
		Body: common.Body{
			Code:    common.CodeInvalidBody,
			Message: err.Error(),
		},
	}
	HandleApiErr(c, &errResp)
}
