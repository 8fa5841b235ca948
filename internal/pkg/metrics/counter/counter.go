package counter

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pennywiseapp/pennywise/internal/pkg/cache"
	"github.com/pennywiseapp/pennywise/internal/pkg/database"
)

const (
	csvExportsKey = "export:counters:csv"
	pdfExportsKey = "export:counters:pdf"
)

// AddCSVExport increments the pending CSV export counter for a user in Redis
func AddCSVExport(userID uint) error {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(userID), 10)
	return cache.GetClient().HIncrBy(ctx, csvExportsKey, field, 1).Err()
}

// AddPDFExport increments the pending PDF export counter for a user in Redis
func AddPDFExport(userID uint) error {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(userID), 10)
	return cache.GetClient().HIncrBy(ctx, pdfExportsKey, field, 1).Err()
}

// FlushAll flushes pending export counters to the users table
func FlushAll() error {
	if err := flushHashToTable(csvExportsKey, "users", "csv_export_count"); err != nil {
		return err
	}
	if err := flushHashToTable(pdfExportsKey, "users", "pdf_export_count"); err != nil {
		return err
	}
	return nil
}

type pair struct {
	id  uint64
	inc int64
}

// flushHashToTable drains a Redis hash atomically and applies batched
// increments to the target table. Uses RENAME to a temporary key so in-flight
// increments are not lost.
func flushHashToTable(redisKey, table, column string) error {
	ctx := context.Background()
	rdb := cache.GetClient()

	tmpKey := fmt.Sprintf("%s:tmp:%d", redisKey, time.Now().UnixNano())
	if err := rdb.Do(ctx, "RENAME", redisKey, tmpKey).Err(); err != nil {
		// If key does not exist, nothing to flush
		if strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		if err.Error() == "redis: nil" {
			return nil
		}
		return err
	}

	defer rdb.Del(ctx, tmpKey)

	data, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	pairs := make([]pair, 0, len(data))
	for k, v := range data {
		id, perr := strconv.ParseUint(k, 10, 64)
		if perr != nil {
			continue
		}
		inc, ierr := strconv.ParseInt(v, 10, 64)
		if ierr != nil || inc == 0 {
			continue
		}
		pairs = append(pairs, pair{id: id, inc: inc})
	}
	if len(pairs) == 0 {
		return nil
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].id < pairs[j].id })

	sql, args := buildIncrementSQL(table, column, pairs)
	db := database.GetDB()
	if err := db.Exec(sql, args...).Error; err != nil {
		return err
	}
	return nil
}

// buildIncrementSQL composes a single batched UPDATE:
// UPDATE <table> SET <col> = <col> + CASE id WHEN ? THEN ? ... END WHERE id IN (...)
func buildIncrementSQL(table, column string, pairs []pair) (string, []interface{}) {
	var builder strings.Builder
	args := make([]interface{}, 0, len(pairs)*3)
	builder.WriteString("UPDATE ")
	builder.WriteString(table)
	builder.WriteString(" SET ")
	builder.WriteString(column)
	builder.WriteString(" = ")
	builder.WriteString(column)
	builder.WriteString(" + CASE id ")
	for _, p := range pairs {
		builder.WriteString(" WHEN ? THEN ?")
		args = append(args, p.id, p.inc)
	}
	builder.WriteString(" END WHERE id IN (")
	for i, p := range pairs {
		if i > 0 {
			builder.WriteString(",")
		}
		builder.WriteString("?")
		args = append(args, p.id)
	}
	builder.WriteString(")")
	return builder.String(), args
}

// StartFlusher flushes counters on a fixed interval until ctx is cancelled.
func StartFlusher(ctx context.Context, interval time.Duration, onError func(error)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := FlushAll(); err != nil && onError != nil {
					onError(err)
				}
			}
		}
	}()
}
