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
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/penny-vault/pvsnapshot/data"
	"github.com/rs/zerolog"
)

// ResetSchema drops and recreates the market_data, tickers_data and
// fundamentals_data_table tables. The reset is committed on its own and is
// not undone by a later load failure.
func (myLibrary *Library) ResetSchema(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	tx, err := myLibrary.begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaReset, err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			if !errors.Is(err, pgx.ErrTxClosed) {
				logger.Error().Err(err).Msg("error rollingback schema reset tx")
			}
		}
	}()

	for _, key := range data.DataTypeOrder {
		dataType := data.DataTypes[key]

		if _, err := tx.Exec(ctx, dataType.DropStatement()); err != nil {
			return schemaResetError(dataType.Table, err)
		}

		if _, err := tx.Exec(ctx, dataType.ExpandedSchema()); err != nil {
			return schemaResetError(dataType.Table, err)
		}

		logger.Debug().Str("Table", dataType.Table).Msg("recreated table")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrSchemaReset, err)
	}

	logger.Info().Int("NumTables", len(data.DataTypeOrder)).Msg("schema reset")

	return nil
}

func schemaResetError(table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InsufficientPrivilege {
		return fmt.Errorf("%w: %w: %s: %w", ErrSchemaReset, ErrInsufficientPrivilege, table, err)
	}

	return fmt.Errorf("%w: %s: %w", ErrSchemaReset, table, err)
}
