package main

import (
	"github.com/go-kit/kit/log"

	"github.com/tallier/tallier/core"
	"github.com/tallier/tallier/service/app"
	"github.com/tallier/tallier/service/counter"
)

// consumeCounter drains the writeback queue and persists the cached counts
// of the identities it names. Malformed tasks and tasks whose cache value
// is gone are acked and dropped, transient store failures leave the task
// unacked for redelivery.
func consumeCounter(
	counterSource counter.Source,
	flush core.CounterFlushFunc,
	logger log.Logger,
) error {
	for {
		task, err := counterSource.Consume()
		if err != nil {
			if counter.IsEmptySource(err) {
				continue
			}
			return err
		}

		currentApp, err := app.FromNamespace(task.Namespace)
		if err != nil {
			logger.Log(
				"err", err,
				"namespace", task.Namespace,
				"task", task.ID,
			)

			if err := counterSource.Ack(task.AckID); err != nil {
				return err
			}

			continue
		}

		if !task.PeriodType.Valid() {
			logger.Log(
				"err", "period type not supported",
				"periodType", task.PeriodType,
				"task", task.ID,
			)

			if err := counterSource.Ack(task.AckID); err != nil {
				return err
			}

			continue
		}

		period, err := counter.ParsePeriod(task.Period)
		if err != nil {
			logger.Log(
				"err", err,
				"period", task.Period,
				"task", task.ID,
			)

			if err := counterSource.Ack(task.AckID); err != nil {
				return err
			}

			continue
		}

		_, err = flush(currentApp, task.Name, task.PeriodType, period)
		if err != nil {
			if core.IsMissingCacheValue(err) {
				logger.Log(
					"err", err,
					"name", task.Name,
					"task", task.ID,
				)

				if err := counterSource.Ack(task.AckID); err != nil {
					return err
				}

				continue
			}

			logger.Log(
				"err", err,
				"name", task.Name,
				"task", task.ID,
			)

			continue
		}

		if err := counterSource.Ack(task.AckID); err != nil {
			return err
		}
	}
}
