package list_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/blendeval/internal/app/list"
	"github.com/slok/blendeval/internal/log"
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/storage"
	"github.com/slok/blendeval/internal/storage/storagemock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config list.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: list.ServiceConfig{
				Repository: &storagemock.MockRepository{},
				Logger:     log.Noop,
			},
			expErr: false,
		},
		"missing repository should fail": {
			config: list.ServiceConfig{
				Logger: log.Noop,
			},
			expErr: true,
		},
		"nil logger should default to noop": {
			config: list.ServiceConfig{
				Repository: &storagemock.MockRepository{},
			},
			expErr: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			svc, err := list.NewService(test.config)

			if test.expErr {
				require.Error(err)
				require.Nil(svc)
			} else {
				require.NoError(err)
				require.NotNil(svc)
			}
		})
	}
}

func TestService_Run(t *testing.T) {
	createdAt := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)

	running := model.TaskStatusRunning

	tasks := []model.Task{
		{ID: "t2", Method: "pso", Status: model.TaskStatusRunning, Owner: "alice", CreatedAt: createdAt.Add(time.Minute)},
		{ID: "t1", Method: "linear", Status: model.TaskStatusStopped, Owner: "alice", CreatedAt: createdAt},
	}

	tests := map[string]struct {
		mock      func(m *storagemock.MockRepository)
		req       list.Request
		expResult []model.Task
		expErr    bool
	}{
		"list all tasks without filter": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything, storage.TaskListOpts{}).Once().Return(tasks, nil)
			},
			req:       list.Request{},
			expResult: tasks,
		},
		"filter by user and running status": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything, storage.TaskListOpts{Owner: "alice", Status: model.TaskStatusRunning}).Once().Return(tasks[:1], nil)
			},
			req:       list.Request{User: "alice", StatusFilter: &running},
			expResult: tasks[:1],
		},
		"repository error should fail": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything, mock.Anything).Once().Return(nil, fmt.Errorf("something"))
			},
			req:    list.Request{},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mRepo := storagemock.NewMockRepository(t)
			test.mock(mRepo)

			svc, err := list.NewService(list.ServiceConfig{Repository: mRepo})
			require.NoError(err)

			result, err := svc.Run(context.Background(), test.req)

			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				assert.Equal(test.expResult, result)
			}
		})
	}
}
