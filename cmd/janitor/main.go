package main

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const (
	defaultRetentionDays = 90
	batchSize            = 5000
	maxBatches           = 200
)

type result struct {
	Deleted int64 `json:"deleted"`
	Days    int   `json:"days"`
	Batches int   `json:"batches"`
}

func retentionDays() int {
	if n, err := strconv.Atoi(os.Getenv("GRANT_LOG_RETENTION_DAYS")); err == nil && n > 0 {
		return n
	}
	return defaultRetentionDays
}

// handler poda grant_log por tandas; pensado para un schedule de EventBridge.
func handler(ctx context.Context) (result, error) {
	res := result{Days: retentionDays()}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return res, errors.New("janitor: falta DATABASE_URL")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return res, err
	}
	cfg.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return res, err
	}
	defer pool.Close()

	// como mucho maxBatches tandas de batchSize filas
	for res.Batches < maxBatches {
		bctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		tag, err := pool.Exec(bctx, `
DELETE FROM grant_log
 WHERE id IN (
   SELECT id FROM grant_log
    WHERE created_at < now() - make_interval(days => $1)
    LIMIT $2
 )`, res.Days, batchSize)
		cancel()
		if err != nil {
			logrus.WithError(err).WithField("deleted", res.Deleted).Error("janitor: prune grant_log")
			return res, err
		}
		res.Batches++
		res.Deleted += tag.RowsAffected()
		if tag.RowsAffected() < batchSize {
			break
		}
	}

	logrus.WithFields(logrus.Fields{"rows": res.Deleted, "days": res.Days, "batches": res.Batches}).Info("janitor: grant_log podado")
	return res, nil
}

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	lambda.Start(handler)
}
