package logrus_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/slok/blendeval/internal/log"
	loglogrus "github.com/slok/blendeval/internal/log/logrus"
)

func TestLogrusLogger(t *testing.T) {
	tests := map[string]struct {
		log    func(l log.Logger)
		expOut []string
	}{
		"Values should be rendered as fields.": {
			log: func(l log.Logger) {
				l.WithValues(log.Kv{"method": "linear"}).Infof("started %s", "task-1")
			},
			expOut: []string{`"method":"linear"`, `"msg":"started task-1"`},
		},
		"Context values should be rendered as fields.": {
			log: func(l log.Logger) {
				ctx := l.SetValuesOnCtx(context.Background(), log.Kv{"task_id": "t1"})
				l.WithCtxValues(ctx).Warningf("remote failed")
			},
			expOut: []string{`"task_id":"t1"`, `"level":"warning"`},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var b bytes.Buffer
			l := logrus.New()
			l.Out = &b
			l.SetFormatter(&logrus.JSONFormatter{})

			test.log(loglogrus.NewLogrus(logrus.NewEntry(l)))

			for _, exp := range test.expOut {
				assert.Contains(t, b.String(), exp)
			}
		})
	}
}
