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

package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-http-utils/headers"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/service"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/util/fileutils"
)

const (
	// uploadField is the multipart field carrying an uploaded file.
	uploadField = "file"

	defaultPage    = 1
	defaultPerPage = 10
)

type Handlers struct {
	service service.Service
	workDir string
}

// Option is a functional option for handlers.
type Option func(h *Handlers)

// WithWorkDir sets the parent of temporary upload directories.
func WithWorkDir(dir string) Option {
	return func(h *Handlers) {
		h.workDir = dir
	}
}

func New(service service.Service, options ...Option) *Handlers {
	h := &Handlers{service: service}
	for _, opt := range options {
		opt(h)
	}

	return h
}

func (h *Handlers) setPaginationDefault(page, perPage *int) {
	if *page == 0 {
		*page = defaultPage
	}

	if *perPage == 0 {
		*perPage = defaultPerPage
	}
}

func (h *Handlers) setPaginationLinkHeader(ctx *gin.Context, page, perPage, totalCount int) {
	totalPage := (totalCount + perPage - 1) / perPage
	if totalPage == 0 {
		totalPage = 1
	}

	var prevPage int
	if page == 1 {
		prevPage = 1
	} else {
		prevPage = page - 1
	}

	var nextPage int
	if page >= totalPage {
		nextPage = page
	} else {
		nextPage = page + 1
	}

	var links []string
	for _, v := range []struct {
		Name string
		Page int
	}{
		{
			Name: "prev",
			Page: prevPage,
		},
		{
			Name: "next",
			Page: nextPage,
		},
		{
			Name: "first",
			Page: 1,
		},
		{
			Name: "last",
			Page: totalPage,
		},
	} {
		url := *ctx.Request.URL
		query := url.Query()
		query.Set("page", strconv.Itoa(v.Page))
		query.Set("per_page", strconv.Itoa(perPage))
		url.RawQuery = query.Encode()

		links = append(links, fmt.Sprintf("<%s>;rel=%s", url.String(), v.Name))
	}

	ctx.Header(headers.Link, strings.Join(links, ","))
}

// withUploadedFile saves an uploaded file into a temporary directory removed
// once f returns.
func (h *Handlers) withUploadedFile(ctx *gin.Context, file *multipart.FileHeader, f func(path string) error) error {
	return fileutils.WithTempDir(h.workDir, "upload-*", func(dir string) error {
		path := filepath.Join(dir, "upload")
		if err := ctx.SaveUploadedFile(file, path); err != nil {
			return dferrors.Wrap(dferrors.CodeStoreFailure, err, "save uploaded file")
		}

		return f(path)
	})
}

// attachment writes data as a downloaded file.
func attachment(ctx *gin.Context, filename, contentType string, data []byte) {
	ctx.Header(headers.ContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, contentType, data)
}
