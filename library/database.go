// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package library

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotConnected          = errors.New("library is not connected to a database")
	ErrSchemaReset           = errors.New("schema reset failed")
	ErrInsufficientPrivilege = errors.New("insufficient privilege")
	ErrLoad                  = errors.New("load failed")
)

// DB is the part of a pgxpool.Pool the library uses
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Library is the database session of a run. It is opened with Connect,
// used for scoped transactions and must be closed on every exit path.
type Library struct {
	DBUrl string

	DB DB
}

// New wraps an already open database handle
func New(db DB) *Library {
	return &Library{
		DB: db,
	}
}

// Connect to the database configured for the library
func (myLibrary *Library) Connect(ctx context.Context) error {
	if myLibrary.DB != nil {
		return nil
	}

	pool, err := pgxpool.New(ctx, myLibrary.DBUrl)
	if err != nil {
		return err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return err
	}

	myLibrary.DB = pool

	return nil
}

// Close the database pool
func (myLibrary *Library) Close() {
	if myLibrary.DB == nil {
		return
	}

	myLibrary.DB.Close()
	myLibrary.DB = nil
}

func (myLibrary *Library) begin(ctx context.Context) (pgx.Tx, error) {
	if myLibrary.DB == nil {
		return nil, ErrNotConnected
	}

	return myLibrary.DB.Begin(ctx)
}
