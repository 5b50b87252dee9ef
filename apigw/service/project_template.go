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

package service

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/internal/schemas"
)

func (s *service) CreateProjectTemplate(ctx context.Context, req types.CreateProjectTemplateRequest) (*models.ProjectTemplate, error) {
	data, err := s.templateData(req.Data)
	if err != nil {
		return nil, err
	}

	projectTemplate := models.ProjectTemplate{
		Name:        req.Name,
		Description: req.Description,
		Data:        data,
	}

	if err := s.db.WithContext(ctx).Create(&projectTemplate).Error; err != nil {
		return nil, err
	}

	return &projectTemplate, nil
}

func (s *service) GetProjectTemplate(ctx context.Context, id uint) (*models.ProjectTemplate, error) {
	projectTemplate := models.ProjectTemplate{}
	if err := s.db.WithContext(ctx).First(&projectTemplate, id).Error; err != nil {
		if dferrors.CheckError(err, dferrors.CodeReferenceNotFound) {
			return nil, dferrors.ReferenceNotFound("project template %d not found", id)
		}
		return nil, err
	}

	return &projectTemplate, nil
}

func (s *service) GetProjectTemplates(ctx context.Context, q types.GetProjectTemplatesQuery) ([]models.ProjectTemplate, int64, error) {
	var count int64
	var projectTemplates []models.ProjectTemplate
	if err := s.db.WithContext(ctx).Scopes(models.Paginate(q.Page, q.PerPage)).Order("id ASC").
		Find(&projectTemplates).Limit(-1).Offset(-1).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	return projectTemplates, count, nil
}

func (s *service) UpdateProjectTemplate(ctx context.Context, id uint, req types.UpdateProjectTemplateRequest) (*models.ProjectTemplate, error) {
	projectTemplate, err := s.userProjectTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := s.templateData(req.Data)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(projectTemplate).Updates(models.ProjectTemplate{
		Name:        req.Name,
		Description: req.Description,
		Data:        data,
	}).Error; err != nil {
		return nil, err
	}

	return s.GetProjectTemplate(ctx, id)
}

func (s *service) DestroyProjectTemplate(ctx context.Context, id uint) error {
	projectTemplate, err := s.userProjectTemplate(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Delete(projectTemplate).Error
}

// userProjectTemplate returns a project template that was not copied from a
// plugin; those follow the lifecycle of their plugin.
func (s *service) userProjectTemplate(ctx context.Context, id uint) (*models.ProjectTemplate, error) {
	projectTemplate, err := s.GetProjectTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	if projectTemplate.FromPlugin() {
		return nil, dferrors.StateConflict("project template %d belongs to plugin template %s", id, *projectTemplate.TemplateID)
	}

	return projectTemplate, nil
}

func (s *service) templateData(data map[string]any) (datatypes.JSON, error) {
	if data == nil {
		return nil, nil
	}

	if err := s.schemas.ValidateValue(schemas.TemplateData, data); err != nil {
		return nil, err
	}

	b, err := json.Marshal(data)
	if err != nil {
		return nil, dferrors.Wrap(dferrors.CodeInputValidation, err, "encode template data")
	}

	return datatypes.JSON(b), nil
}
