package db

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// WithTx runs fn inside one transaction. The Repo handed to fn is bound to
// the transaction; fn must not touch the outer Repo or it will block on
// single-connection databases.
func (r *Repo) WithTx(ctx context.Context, fn func(tx *Repo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repo{DB: tx})
	})
}

func (r *Repo) Ping(ctx context.Context) error { return Ping(ctx, r.DB) }
