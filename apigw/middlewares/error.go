/*
 *     Copyright 2024 The AI Verify Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package middlewares

import (
	"net/http"

	"github.com/VividCortex/mysqlerr"
	"github.com/gin-gonic/gin"
	"github.com/go-http-utils/headers"
	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
)

// retryAfter is advised to clients when the queue server is unavailable, in seconds.
const retryAfter = "5"

type ErrorResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"errors,omitempty"`
	Code    string `json:"code,omitempty"`
}

var codeStatus = map[dferrors.Code]int{
	dferrors.CodeInputValidation:   http.StatusBadRequest,
	dferrors.CodeReferenceNotFound: http.StatusNotFound,
	dferrors.CodeStateConflict:     http.StatusConflict,
	dferrors.CodeDependencyInUse:   http.StatusConflict,
	dferrors.CodeStoreFailure:      http.StatusInternalServerError,
	dferrors.CodeQueueUnavailable:  http.StatusServiceUnavailable,
	dferrors.CodeInternalInvariant: http.StatusInternalServerError,
}

func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		err := c.Errors.Last()
		if err == nil {
			return
		}

		// Binding error handler
		if err.IsType(gin.ErrorTypeBind) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Message: http.StatusText(http.StatusUnprocessableEntity),
				Error:   err.Error(),
			})
			return
		}

		// Gin error handler
		if err, ok := errors.Cause(err.Err).(*gin.Error); ok {
			switch err.Type {
			case gin.ErrorTypeBind:
				c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
					Message: http.StatusText(http.StatusUnprocessableEntity),
					Error:   err.Error(),
				})
				return
			default:
				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: http.StatusText(http.StatusInternalServerError),
				})
				return
			}
		}

		// Core error handler
		var dferr *dferrors.DfError
		if errors.As(err.Err, &dferr) {
			status, ok := codeStatus[dferr.Code]
			if !ok {
				status = http.StatusInternalServerError
			}

			if dferr.Code.Transient() {
				c.Header(headers.RetryAfter, retryAfter)
			}

			if status >= http.StatusInternalServerError {
				logger.Errorf("%s %s failed: %s", c.Request.Method, c.Request.URL.Path, dferr.Error())
			}

			c.JSON(status, ErrorResponse{
				Message: http.StatusText(status),
				Error:   dferr.Message,
				Code:    dferr.Code.String(),
			})
			return
		}

		// Mysql duplicate key handler
		var mysqlErr *mysql.MySQLError
		if errors.As(err.Err, &mysqlErr) && mysqlErr.Number == mysqlerr.ER_DUP_ENTRY {
			c.JSON(http.StatusConflict, ErrorResponse{
				Message: http.StatusText(http.StatusConflict),
			})
			return
		}

		// GORM duplicate key handler
		if errors.Is(err.Err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Message: http.StatusText(http.StatusConflict),
			})
			return
		}

		// GORM ErrRecordNotFound handler
		if errors.Is(err.Err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Message: http.StatusText(http.StatusNotFound),
			})
			return
		}

		// Unknown error
		logger.Errorf("%s %s failed: %s", c.Request.Method, c.Request.URL.Path, err.Error())
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: http.StatusText(http.StatusInternalServerError),
		})
	}
}
