package start_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/blendeval/internal/app/start"
	"github.com/slok/blendeval/internal/log"
	"github.com/slok/blendeval/internal/method"
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/optimizer/optimizermock"
	"github.com/slok/blendeval/internal/storage/storagemock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config start.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: start.ServiceConfig{
				Repository: &storagemock.MockRepository{},
				Optimizer:  &optimizermock.MockClient{},
				Methods:    method.Default(),
				Logger:     log.Noop,
			},
		},
		"missing repository should fail": {
			config: start.ServiceConfig{
				Optimizer: &optimizermock.MockClient{},
			},
			expErr: true,
		},
		"missing optimizer should fail": {
			config: start.ServiceConfig{
				Repository: &storagemock.MockRepository{},
			},
			expErr: true,
		},
		"missing methods and logger should use defaults": {
			config: start.ServiceConfig{
				Repository: &storagemock.MockRepository{},
				Optimizer:  &optimizermock.MockClient{},
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			svc, err := start.NewService(test.config)

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
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	config := &model.ConfigurationSnapshot{
		ID:           "01J0000000000000000000CFG1",
		Owner:        "alice",
		Module:       "sinter",
		ReferenceIDs: []int64{9, 7, 9, 404},
		Settings: model.NewRow().
			Set("linear", model.Object(model.NewRow().Set("max_iterations", model.Int(100)))).
			Set("materials", model.String("reserved")),
		CreatedAt: now,
	}
	items := []model.ReferenceItem{
		{ID: 7, Name: "PB Fines", Composition: map[string]float64{"fe": 62.1, "price": 95}},
		{ID: 9, Name: "Newman Lump", Composition: map[string]float64{"fe": 63.5, "sio2": 4.2}},
	}
	expBundle := `{"module":"sinter","materials":{` +
		`"7":{"id":7,"name":"PB Fines","fe":62.1,"sio2":0,"al2o3":0,"p":0,"s":0,"h2o":0,"loi":0,"price":95},` +
		`"9":{"id":9,"name":"Newman Lump","fe":63.5,"sio2":4.2,"al2o3":0,"p":0,"s":0,"h2o":0,"loi":0,"price":0}},` +
		`"linear":{"max_iterations":100}}`

	isBundle := mock.MatchedBy(func(b *model.Row) bool {
		got, err := json.Marshal(b)
		return err == nil && string(got) == expBundle
	})
	isTask := func(id, method string) any {
		return mock.MatchedBy(func(t model.Task) bool {
			got, _ := json.Marshal(t.Parameters)
			return t.ID == id &&
				t.Method == method &&
				t.Status == model.TaskStatusRunning &&
				t.Owner == "alice" &&
				t.CreatedAt.Equal(now) &&
				string(got) == expBundle
		})
	}

	tests := map[string]struct {
		mock     func(r *storagemock.MockRepository, o *optimizermock.MockClient)
		req      start.Request
		expTasks []model.StartedTask
		expErr   bool
		expErrIs error
	}{
		"All the methods starting should return all the tasks in method order.": {
			mock: func(r *storagemock.MockRepository, o *optimizermock.MockClient) {
				r.On("GetLatestConfiguration", mock.Anything, "alice", "sinter").Once().Return(config, nil)
				r.On("GetReferenceItems", mock.Anything, []int64{7, 9, 404}).Once().Return(items, nil)
				for _, m := range []string{"linear", "genetic", "pso", "annealing"} {
					o.On("Start", mock.Anything, mock.MatchedBy(func(d model.MethodDescriptor) bool { return d.Name == m }), isBundle).Once().Return("t-"+m, nil)
					r.On("CreateTask", mock.Anything, isTask("t-"+m, m)).Once().Return(nil)
				}
			},
			req: start.Request{User: "alice", Module: "sinter"},
			expTasks: []model.StartedTask{
				{TaskID: "t-linear", Method: "linear"},
				{TaskID: "t-genetic", Method: "genetic"},
				{TaskID: "t-pso", Method: "pso"},
				{TaskID: "t-annealing", Method: "annealing"},
			},
		},
		"Failing methods should be skipped without registering tasks.": {
			mock: func(r *storagemock.MockRepository, o *optimizermock.MockClient) {
				r.On("GetLatestConfiguration", mock.Anything, "alice", "sinter").Once().Return(config, nil)
				r.On("GetReferenceItems", mock.Anything, mock.Anything).Once().Return(items, nil)
				for _, m := range []string{"linear", "pso"} {
					o.On("Start", mock.Anything, mock.MatchedBy(func(d model.MethodDescriptor) bool { return d.Name == m }), isBundle).Once().Return("t-"+m, nil)
					r.On("CreateTask", mock.Anything, isTask("t-"+m, m)).Once().Return(nil)
				}
				for _, m := range []string{"genetic", "annealing"} {
					o.On("Start", mock.Anything, mock.MatchedBy(func(d model.MethodDescriptor) bool { return d.Name == m }), isBundle).Once().Return("", fmt.Errorf("timeout: %w", model.ErrRemoteUnreachable))
				}
			},
			req: start.Request{User: "alice", Module: "sinter"},
			expTasks: []model.StartedTask{
				{TaskID: "t-linear", Method: "linear"},
				{TaskID: "t-pso", Method: "pso"},
			},
		},
		"All the methods failing should return an empty list without error.": {
			mock: func(r *storagemock.MockRepository, o *optimizermock.MockClient) {
				r.On("GetLatestConfiguration", mock.Anything, "alice", "sinter").Once().Return(config, nil)
				r.On("GetReferenceItems", mock.Anything, mock.Anything).Once().Return(items, nil)
				o.On("Start", mock.Anything, mock.Anything, mock.Anything).Times(4).Return("", model.ErrRemoteUnreachable)
			},
			req:      start.Request{User: "alice", Module: "sinter"},
			expTasks: []model.StartedTask{},
		},
		"A task that can't be registered should be stopped and not returned.": {
			mock: func(r *storagemock.MockRepository, o *optimizermock.MockClient) {
				r.On("GetLatestConfiguration", mock.Anything, "alice", "sinter").Once().Return(config, nil)
				r.On("GetReferenceItems", mock.Anything, mock.Anything).Once().Return(items, nil)
				for _, m := range []string{"linear", "genetic", "pso", "annealing"} {
					o.On("Start", mock.Anything, mock.MatchedBy(func(d model.MethodDescriptor) bool { return d.Name == m }), mock.Anything).Once().Return("t-"+m, nil)
				}
				r.On("CreateTask", mock.Anything, isTask("t-genetic", "genetic")).Once().Return(fmt.Errorf("disk full"))
				r.On("CreateTask", mock.Anything, mock.Anything).Times(3).Return(nil)
				o.On("Stop", mock.Anything, mock.MatchedBy(func(d model.MethodDescriptor) bool { return d.Name == "genetic" }), "t-genetic").Once().Return(nil)
			},
			req: start.Request{User: "alice", Module: "sinter"},
			expTasks: []model.StartedTask{
				{TaskID: "t-linear", Method: "linear"},
				{TaskID: "t-pso", Method: "pso"},
				{TaskID: "t-annealing", Method: "annealing"},
			},
		},
		"Two methods returning the same ID should keep the first registered and stop the other.": {
			mock: func(r *storagemock.MockRepository, o *optimizermock.MockClient) {
				r.On("GetLatestConfiguration", mock.Anything, "alice", "sinter").Once().Return(config, nil)
				r.On("GetReferenceItems", mock.Anything, mock.Anything).Once().Return(items, nil)
				for _, m := range []string{"linear", "pso"} {
					o.On("Start", mock.Anything, mock.MatchedBy(func(d model.MethodDescriptor) bool { return d.Name == m }), mock.Anything).Once().Return("1", nil)
				}
				for _, m := range []string{"genetic", "annealing"} {
					o.On("Start", mock.Anything, mock.MatchedBy(func(d model.MethodDescriptor) bool { return d.Name == m }), mock.Anything).Once().Return("", model.ErrRemoteUnreachable)
				}
				r.On("CreateTask", mock.Anything, isTask("1", "linear")).Once().Return(nil)
				r.On("CreateTask", mock.Anything, isTask("1", "pso")).Once().Return(fmt.Errorf("task 1: %w", model.ErrAlreadyExists))
				o.On("Stop", mock.Anything, mock.MatchedBy(func(d model.MethodDescriptor) bool { return d.Name == "pso" }), "1").Once().Return(nil)
			},
			req: start.Request{User: "alice", Module: "sinter"},
			expTasks: []model.StartedTask{
				{TaskID: "1", Method: "linear"},
			},
		},
		"A missing configuration should fail without starting anything.": {
			mock: func(r *storagemock.MockRepository, o *optimizermock.MockClient) {
				r.On("GetLatestConfiguration", mock.Anything, "alice", "sinter").Once().Return(nil, model.ErrNotFound)
			},
			req:      start.Request{User: "alice", Module: "sinter"},
			expErr:   true,
			expErrIs: model.ErrConfigurationMissing,
		},
		"A reference store failure should fail without starting anything.": {
			mock: func(r *storagemock.MockRepository, o *optimizermock.MockClient) {
				r.On("GetLatestConfiguration", mock.Anything, "alice", "sinter").Once().Return(config, nil)
				r.On("GetReferenceItems", mock.Anything, mock.Anything).Once().Return(nil, fmt.Errorf("db locked"))
			},
			req:    start.Request{User: "alice", Module: "sinter"},
			expErr: true,
		},
		"A missing user should fail.": {
			mock:     func(r *storagemock.MockRepository, o *optimizermock.MockClient) {},
			req:      start.Request{Module: "sinter"},
			expErr:   true,
			expErrIs: model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			repo := storagemock.NewMockRepository(t)
			opt := optimizermock.NewMockClient(t)
			test.mock(repo, opt)

			svc, err := start.NewService(start.ServiceConfig{
				Repository:  repo,
				Optimizer:   opt,
				Methods:     method.Default(),
				TimeNowFunc: func() time.Time { return now },
			})
			require.NoError(err)

			tasks, err := svc.Run(context.Background(), test.req)

			if test.expErr {
				require.Error(err)
				if test.expErrIs != nil {
					assert.ErrorIs(err, test.expErrIs)
				}
				return
			}
			require.NoError(err)
			assert.Equal(test.expTasks, tasks)
		})
	}
}

func TestService_RunDoesNotMutateStoredConfiguration(t *testing.T) {
	require := require.New(t)

	settings := model.NewRow().Set("pso", model.Object(model.NewRow().Set("particles", model.Int(30))))
	config := &model.ConfigurationSnapshot{Owner: "bob", Module: "pellet", Settings: settings}

	repo := storagemock.NewMockRepository(t)
	opt := optimizermock.NewMockClient(t)
	repo.On("GetLatestConfiguration", mock.Anything, "bob", "pellet").Once().Return(config, nil)
	opt.On("Start", mock.Anything, mock.Anything, mock.Anything).Return("", model.ErrRemoteUnreachable)

	svc, err := start.NewService(start.ServiceConfig{Repository: repo, Optimizer: opt})
	require.NoError(err)

	tasks, err := svc.Run(context.Background(), start.Request{User: "bob", Module: "pellet"})
	require.NoError(err)
	require.Empty(tasks)

	got, err := json.Marshal(config.Settings)
	require.NoError(err)
	require.Equal(`{"pso":{"particles":30}}`, string(got))
	require.Same(settings, config.Settings)
}
