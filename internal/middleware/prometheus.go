package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/readmegen-lab/backend/internal/common"
	"github.com/readmegen-lab/backend/pkg/errorx"
	"github.com/readmegen-lab/backend/pkg/router"
	"github.com/readmegen-lab/backend/pkg/xcontext"
)

func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		code := 0
		if err := xcontext.Error(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				code = int(errx.Code)
			} else {
				code = -1
			}
		}

		path := xcontext.HTTPRequest(ctx).URL.Path
		elapsed := time.Since(xcontext.StartTime(ctx))

		common.HTTPRequestTotal.WithLabelValues(path, fmt.Sprint(code)).Inc()
		common.HTTPRequestDurationSeconds.WithLabelValues(path, fmt.Sprint(code)).Observe(elapsed.Seconds())
	}
}
