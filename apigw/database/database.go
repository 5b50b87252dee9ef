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

package database

import (
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"moul.io/zapgorm2"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/config"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
)

type Database struct {
	DB  *gorm.DB
	RDB redis.UniversalClient
}

// New opens the relational store selected by the database uri and the queue server.
func New(cfg *config.Config) (*Database, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	rdb, err := NewRedis(&cfg.Queue)
	if err != nil {
		return nil, err
	}

	return &Database{
		DB:  db,
		RDB: rdb,
	}, nil
}

// Open opens the relational store selected by the database uri.
func Open(cfg *config.Config) (*gorm.DB, error) {
	scheme, err := config.DatabaseScheme(cfg.Database.URI)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch scheme {
	case config.DatabaseSchemeMysql:
		dialector, err = newMysql(cfg.Database.URI)
	case config.DatabaseSchemePostgres:
		dialector, err = newPostgres(cfg.Database.URI)
	default:
		dialector, err = newSqlite(cfg.Database.URI)
	}
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   newGormLogger(cfg.Verbose),
	})
	if err != nil {
		return nil, err
	}

	// Run migration.
	if cfg.Database.Migrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	logger.Infof("opened %s database", scheme)
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

func newGormLogger(verbose bool) gormlogger.Interface {
	logLevel := gormlogger.Info
	if !verbose {
		logLevel = gormlogger.Warn
	}

	l := zapgorm2.New(logger.GormLogger.Desugar())
	l.IgnoreRecordNotFoundError = true
	return l.LogMode(logLevel)
}
