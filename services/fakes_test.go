package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/agentdouble/kpix/cache"
	"github.com/agentdouble/kpix/config"
	"github.com/agentdouble/kpix/engine"
	"github.com/agentdouble/kpix/models"
	repository "github.com/agentdouble/kpix/repositories"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// store is an in-memory stand-in for the Mongo collections. It mirrors the
// organization scoping and the unique indexes of the real repositories.
type store struct {
	mu         sync.Mutex
	orgs       map[primitive.ObjectID]models.Organization
	users      map[primitive.ObjectID]models.User
	dashboards map[primitive.ObjectID]models.Dashboard
	kpis       map[primitive.ObjectID]models.KPI
	values     map[primitive.ObjectID]models.KPIValue
	actions    map[primitive.ObjectID]models.ActionPlan
	comments   map[primitive.ObjectID]models.Comment
	jobs       map[primitive.ObjectID]models.ImportJob
	files      map[primitive.ObjectID][]byte
}

func newStore() *store {
	return &store{
		orgs:       map[primitive.ObjectID]models.Organization{},
		users:      map[primitive.ObjectID]models.User{},
		dashboards: map[primitive.ObjectID]models.Dashboard{},
		kpis:       map[primitive.ObjectID]models.KPI{},
		values:     map[primitive.ObjectID]models.KPIValue{},
		actions:    map[primitive.ObjectID]models.ActionPlan{},
		comments:   map[primitive.ObjectID]models.Comment{},
		jobs:       map[primitive.ObjectID]models.ImportJob{},
		files:      map[primitive.ObjectID][]byte{},
	}
}

func sortedByID[T any](items map[primitive.ObjectID]T, keep func(T) bool) []T {
	ids := make([]primitive.ObjectID, 0, len(items))
	for id, item := range items {
		if keep(item) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, items[id])
	}
	return out
}

func notFoundErr(resource string, id primitive.ObjectID) error {
	return &engine.NotFoundError{Resource: resource, ID: id.Hex()}
}

// fakeTx snapshots the value collection and restores it when fn fails, which
// is what a Mongo transaction abort gives the services.
type fakeTx struct {
	s     *store
	calls int
}

func (t *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	t.s.mu.Lock()
	values := make(map[primitive.ObjectID]models.KPIValue, len(t.s.values))
	for k, v := range t.s.values {
		values[k] = v
	}
	t.s.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.s.mu.Lock()
		t.s.values = values
		t.s.mu.Unlock()
		return err
	}
	return nil
}

type fakeOrgRepo struct{ s *store }

func (r fakeOrgRepo) Create(_ context.Context, org *models.Organization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	org.ID = primitive.NewObjectID()
	r.s.orgs[org.ID] = *org
	return nil
}

func (r fakeOrgRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	org, ok := r.s.orgs[id]
	if !ok {
		return nil, notFoundErr("organization", id)
	}
	return &org, nil
}

type fakeUserRepo struct{ s *store }

func (r fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return &engine.ConflictError{Resource: "user", Message: "already exists"}
		}
	}
	user.ID = primitive.NewObjectID()
	r.s.users[user.ID] = *user
	return nil
}

func (r fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, &engine.NotFoundError{Resource: "user"}
}

func (r fakeUserRepo) GetByID(_ context.Context, orgID, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.OrganizationID != orgID {
		return nil, notFoundErr("user", id)
	}
	return &u, nil
}

func (r fakeUserRepo) List(_ context.Context, orgID primitive.ObjectID) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedByID(r.s.users, func(u models.User) bool { return u.OrganizationID == orgID }), nil
}

type fakeDashboardRepo struct{ s *store }

func (r fakeDashboardRepo) Create(_ context.Context, d *models.Dashboard) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ID = primitive.NewObjectID()
	r.s.dashboards[d.ID] = *d
	return nil
}

func (r fakeDashboardRepo) GetByID(_ context.Context, orgID, id primitive.ObjectID) (*models.Dashboard, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.dashboards[id]
	if !ok || d.OrganizationID != orgID {
		return nil, notFoundErr("dashboard", id)
	}
	return &d, nil
}

func (r fakeDashboardRepo) List(_ context.Context, orgID primitive.ObjectID, filter repository.DashboardFilter) ([]models.Dashboard, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := sortedByID(r.s.dashboards, func(d models.Dashboard) bool {
		return d.OrganizationID == orgID && (filter.ProcessName == "" || d.ProcessName == filter.ProcessName)
	})
	if filter.OrderByTitle {
		sort.SliceStable(out, func(i, j int) bool { return strings.Compare(out[i].Title, out[j].Title) < 0 })
	}
	return out, nil
}

func (r fakeDashboardRepo) Update(_ context.Context, d *models.Dashboard) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.dashboards[d.ID]; !ok || existing.OrganizationID != d.OrganizationID {
		return notFoundErr("dashboard", d.ID)
	}
	r.s.dashboards[d.ID] = *d
	return nil
}

type fakeKPIRepo struct{ s *store }

func (r fakeKPIRepo) Create(_ context.Context, k *models.KPI) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k.ID = primitive.NewObjectID()
	r.s.kpis[k.ID] = *k
	return nil
}

func (r fakeKPIRepo) GetByID(_ context.Context, orgID, id primitive.ObjectID) (*models.KPI, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k, ok := r.s.kpis[id]
	if !ok || k.OrganizationID != orgID {
		return nil, notFoundErr("kpi", id)
	}
	return &k, nil
}

func (r fakeKPIRepo) ListByDashboard(_ context.Context, orgID, dashboardID primitive.ObjectID) ([]models.KPI, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedByID(r.s.kpis, func(k models.KPI) bool {
		return k.OrganizationID == orgID && k.DashboardID == dashboardID
	}), nil
}

func (r fakeKPIRepo) ListByOrganization(_ context.Context, orgID primitive.ObjectID) ([]models.KPI, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedByID(r.s.kpis, func(k models.KPI) bool { return k.OrganizationID == orgID }), nil
}

func (r fakeKPIRepo) Update(_ context.Context, k *models.KPI) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.kpis[k.ID]; !ok || existing.OrganizationID != k.OrganizationID {
		return notFoundErr("kpi", k.ID)
	}
	r.s.kpis[k.ID] = *k
	return nil
}

type fakeValueRepo struct{ s *store }

func (r fakeValueRepo) Create(_ context.Context, v *models.KPIValue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.values {
		if existing.KPIID == v.KPIID && existing.PeriodStart.Equal(v.PeriodStart) && existing.PeriodEnd.Equal(v.PeriodEnd) {
			return &engine.ConflictError{Resource: "kpi value", Message: "value for this period already exists"}
		}
	}
	v.ID = primitive.NewObjectID()
	r.s.values[v.ID] = *v
	return nil
}

func (r fakeValueRepo) ListByKPI(_ context.Context, orgID, kpiID primitive.ObjectID) ([]models.KPIValue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := sortedByID(r.s.values, func(v models.KPIValue) bool {
		return v.OrganizationID == orgID && v.KPIID == kpiID
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].PeriodStart.After(out[j].PeriodStart) })
	return out, nil
}

func (r fakeValueRepo) ListRecent(_ context.Context, orgID primitive.ObjectID, n int) ([]models.KPIValue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := sortedByID(r.s.values, func(v models.KPIValue) bool { return v.OrganizationID == orgID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (r fakeValueRepo) RecentByKPIs(_ context.Context, orgID primitive.ObjectID, kpiIDs []primitive.ObjectID, n int) (map[primitive.ObjectID][]models.KPIValue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := map[primitive.ObjectID]bool{}
	for _, id := range kpiIDs {
		wanted[id] = true
	}
	values := sortedByID(r.s.values, func(v models.KPIValue) bool {
		return v.OrganizationID == orgID && wanted[v.KPIID]
	})
	return engine.LatestByKPI(values, n), nil
}

type fakeActionRepo struct{ s *store }

func (r fakeActionRepo) Create(_ context.Context, a *models.ActionPlan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = primitive.NewObjectID()
	r.s.actions[a.ID] = *a
	return nil
}

func (r fakeActionRepo) GetByID(_ context.Context, orgID, id primitive.ObjectID) (*models.ActionPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.actions[id]
	if !ok || a.OrganizationID != orgID {
		return nil, notFoundErr("action plan", id)
	}
	return &a, nil
}

func (r fakeActionRepo) ListByKPI(_ context.Context, orgID, kpiID primitive.ObjectID) ([]models.ActionPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedByID(r.s.actions, func(a models.ActionPlan) bool {
		return a.OrganizationID == orgID && a.KPIID == kpiID
	}), nil
}

func (r fakeActionRepo) ListByOrganization(_ context.Context, orgID primitive.ObjectID) ([]models.ActionPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedByID(r.s.actions, func(a models.ActionPlan) bool { return a.OrganizationID == orgID }), nil
}

func (r fakeActionRepo) Update(_ context.Context, a *models.ActionPlan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.actions[a.ID]; !ok || existing.OrganizationID != a.OrganizationID {
		return notFoundErr("action plan", a.ID)
	}
	r.s.actions[a.ID] = *a
	return nil
}

type fakeCommentRepo struct{ s *store }

func (r fakeCommentRepo) Create(_ context.Context, c *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = primitive.NewObjectID()
	r.s.comments[c.ID] = *c
	return nil
}

func (r fakeCommentRepo) ListByKPI(_ context.Context, orgID, kpiID primitive.ObjectID) ([]models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedByID(r.s.comments, func(c models.Comment) bool {
		return c.OrganizationID == orgID && c.KPIID != nil && *c.KPIID == kpiID
	}), nil
}

func (r fakeCommentRepo) ListByActionPlan(_ context.Context, orgID, actionID primitive.ObjectID) ([]models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedByID(r.s.comments, func(c models.Comment) bool {
		return c.OrganizationID == orgID && c.ActionPlanID != nil && *c.ActionPlanID == actionID
	}), nil
}

type fakeJobRepo struct{ s *store }

func (r fakeJobRepo) Create(_ context.Context, j *models.ImportJob) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j.ID = primitive.NewObjectID()
	r.s.jobs[j.ID] = *j
	return nil
}

func (r fakeJobRepo) GetByID(_ context.Context, orgID, id primitive.ObjectID) (*models.ImportJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok || j.OrganizationID != orgID {
		return nil, notFoundErr("import job", id)
	}
	return &j, nil
}

func (r fakeJobRepo) List(_ context.Context, orgID primitive.ObjectID) ([]models.ImportJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedByID(r.s.jobs, func(j models.ImportJob) bool { return j.OrganizationID == orgID }), nil
}

func (r fakeJobRepo) Update(_ context.Context, j *models.ImportJob) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.jobs[j.ID] = *j
	return nil
}

func (r fakeJobRepo) UploadFile(_ context.Context, _ primitive.ObjectID, _ string, data io.Reader, _ primitive.ObjectID) (primitive.ObjectID, error) {
	content, err := io.ReadAll(data)
	if err != nil {
		return primitive.NilObjectID, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id := primitive.NewObjectID()
	r.s.files[id] = content
	return id, nil
}

func (r fakeJobRepo) DownloadFile(_ context.Context, fileID primitive.ObjectID) (io.ReadCloser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	content, ok := r.s.files[fileID]
	if !ok {
		return nil, notFoundErr("import file", fileID)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (r fakeJobRepo) DeleteFile(_ context.Context, fileID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.files, fileID)
	return nil
}

type fakeCascadeRepo struct{ s *store }

func (r fakeCascadeRepo) DeleteDashboard(_ context.Context, orgID, dashboardID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, k := range r.s.kpis {
		if k.OrganizationID == orgID && k.DashboardID == dashboardID {
			r.deleteKPI(id)
		}
	}
	delete(r.s.dashboards, dashboardID)
	return nil
}

func (r fakeCascadeRepo) DeleteKPI(_ context.Context, orgID, kpiID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if k, ok := r.s.kpis[kpiID]; !ok || k.OrganizationID != orgID {
		return notFoundErr("kpi", kpiID)
	}
	r.deleteKPI(kpiID)
	return nil
}

func (r fakeCascadeRepo) deleteKPI(kpiID primitive.ObjectID) {
	for id, v := range r.s.values {
		if v.KPIID == kpiID {
			delete(r.s.values, id)
		}
	}
	for id, a := range r.s.actions {
		if a.KPIID != kpiID {
			continue
		}
		for cid, c := range r.s.comments {
			if c.ActionPlanID != nil && *c.ActionPlanID == id {
				delete(r.s.comments, cid)
			}
		}
		delete(r.s.actions, id)
	}
	for cid, c := range r.s.comments {
		if c.KPIID != nil && *c.KPIID == kpiID {
			delete(r.s.comments, cid)
		}
	}
	delete(r.s.kpis, kpiID)
}

// mockReportCache records cache traffic. By default every Get misses.
type mockReportCache struct {
	mock.Mock
}

func (m *mockReportCache) Generation(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReportCache) Get(ctx context.Context, orgID primitive.ObjectID, key string, dst interface{}) (bool, error) {
	args := m.Called(ctx, orgID, key, dst)
	return args.Bool(0), args.Error(1)
}

func (m *mockReportCache) Set(ctx context.Context, orgID primitive.ObjectID, gen int64, key string, value interface{}) error {
	args := m.Called(ctx, orgID, gen, key, value)
	return args.Error(0)
}

func (m *mockReportCache) Invalidate(ctx context.Context, orgID primitive.ObjectID) error {
	args := m.Called(ctx, orgID)
	return args.Error(0)
}

var _ cache.ReportCache = (*mockReportCache)(nil)

// memoryReportCache is a working in-process ReportCache with generations.
type memoryReportCache struct {
	mu    sync.Mutex
	gens  map[primitive.ObjectID]int64
	views map[primitive.ObjectID]map[string][]byte
}

func newMemoryReportCache() *memoryReportCache {
	return &memoryReportCache{
		gens:  map[primitive.ObjectID]int64{},
		views: map[primitive.ObjectID]map[string][]byte{},
	}
}

func (c *memoryReportCache) Generation(_ context.Context, orgID primitive.ObjectID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[orgID], nil
}

func (c *memoryReportCache) Get(_ context.Context, orgID primitive.ObjectID, key string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.views[orgID][key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memoryReportCache) Set(_ context.Context, orgID primitive.ObjectID, gen int64, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[orgID] != gen {
		return cache.ErrStaleGeneration
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.views[orgID] == nil {
		c.views[orgID] = map[string][]byte{}
	}
	c.views[orgID][key] = raw
	return nil
}

func (c *memoryReportCache) Invalidate(_ context.Context, orgID primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[orgID]++
	delete(c.views, orgID)
	return nil
}

// env wires every service against one store.
type env struct {
	store   *store
	tx      *fakeTx
	reports *mockReportCache
	// shared replaces reports in every service when set.
	shared cache.ReportCache
	metrics *Metrics
	clock   engine.FixedClock
	org     models.Organization
	admin   models.Principal
	member  models.Principal
}

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newEnv() *env {
	s := newStore()
	e := &env{
		store:   s,
		tx:      &fakeTx{s: s},
		reports: &mockReportCache{},
		metrics: NewMetrics(prometheus.NewRegistry()),
		clock:   engine.FixedClock(testNow),
	}
	e.reports.On("Invalidate", mock.Anything, mock.Anything).Return(nil).Maybe()
	e.reports.On("Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Maybe()
	e.reports.On("Generation", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()
	e.reports.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	e.org = models.Organization{ID: primitive.NewObjectID(), Name: "Acme"}
	s.orgs[e.org.ID] = e.org
	e.admin = e.addUser(models.RoleAdmin)
	e.member = e.addUser(models.RoleUser)
	return e
}

func (e *env) addUser(role models.Role) models.Principal {
	u := models.User{
		ID:             primitive.NewObjectID(),
		OrganizationID: e.org.ID,
		Email:          primitive.NewObjectID().Hex() + "@acme.test",
		Role:           role,
		IsActive:       true,
	}
	e.store.users[u.ID] = u
	return models.Principal{UserID: u.ID, OrganizationID: e.org.ID, Role: role}
}

func (e *env) reportCache() cache.ReportCache {
	if e.shared != nil {
		return e.shared
	}
	return e.reports
}

func (e *env) dashboardService() DashboardService {
	return NewDashboardService(fakeDashboardRepo{e.store}, fakeCascadeRepo{e.store}, e.tx, e.reportCache(), e.clock, zap.NewNop())
}

func (e *env) kpiService() KPIService {
	return NewKPIService(KPIServiceDeps{
		Dashboards: fakeDashboardRepo{e.store},
		KPIs:       fakeKPIRepo{e.store},
		Values:     fakeValueRepo{e.store},
		Users:      fakeUserRepo{e.store},
		Cascade:    fakeCascadeRepo{e.store},
		Tx:         e.tx,
		Reports:    e.reportCache(),
		Metrics:    e.metrics,
		Clock:      e.clock,
		Logger:     zap.NewNop(),
	})
}

func (e *env) actionService() ActionService {
	return NewActionService(fakeKPIRepo{e.store}, fakeActionRepo{e.store}, fakeUserRepo{e.store}, e.reportCache(), e.clock, zap.NewNop())
}

func (e *env) commentService() CommentService {
	return NewCommentService(fakeKPIRepo{e.store}, fakeActionRepo{e.store}, fakeCommentRepo{e.store}, e.clock, zap.NewNop())
}

func (e *env) importService() ImportService {
	return NewImportService(ImportServiceDeps{
		Jobs:    fakeJobRepo{e.store},
		KPIs:    fakeKPIRepo{e.store},
		Values:  fakeValueRepo{e.store},
		Tx:      e.tx,
		Reports: e.reportCache(),
		Metrics: e.metrics,
		Clock:   e.clock,
		Logger:  zap.NewNop(),
	})
}

func (e *env) reportingService() ReportingService {
	return e.reportingServiceWith(fakeValueRepo{e.store})
}

func (e *env) reportingServiceWith(values repository.KPIValueRepository) ReportingService {
	return NewReportingService(ReportingServiceDeps{
		Dashboards: fakeDashboardRepo{e.store},
		KPIs:       fakeKPIRepo{e.store},
		Values:     values,
		Actions:    fakeActionRepo{e.store},
		Reports:    e.reportCache(),
		Config: config.ReportingConfig{
			TopRisksDefault:   5,
			TopRisksMax:       50,
			TrendLimit:        3,
			LatestValuesLimit: 20,
		},
		Metrics: e.metrics,
		Clock:   e.clock,
		Logger:  zap.NewNop(),
	})
}

// seedDashboard and seedKPI write straight to the store.
func (e *env) seedDashboard(title string, owner *primitive.ObjectID) models.Dashboard {
	d := models.Dashboard{ID: primitive.NewObjectID(), OrganizationID: e.org.ID, OwnerID: owner, Title: title}
	e.store.dashboards[d.ID] = d
	return d
}

func (e *env) seedKPI(d models.Dashboard, name string, direction models.Direction, green, orange, red float64) models.KPI {
	k := models.KPI{
		ID:              primitive.NewObjectID(),
		DashboardID:     d.ID,
		OrganizationID:  d.OrganizationID,
		Name:            name,
		Frequency:       models.FrequencyMonthly,
		Direction:       direction,
		ThresholdGreen:  green,
		ThresholdOrange: orange,
		ThresholdRed:    red,
		IsActive:        true,
	}
	e.store.kpis[k.ID] = k
	return k
}

func (e *env) seedValue(k models.KPI, periodEnd string, v float64) models.KPIValue {
	end, err := engine.ParseDate("period_end", periodEnd)
	if err != nil {
		panic(err)
	}
	value := models.KPIValue{
		ID:             primitive.NewObjectID(),
		KPIID:          k.ID,
		OrganizationID: k.OrganizationID,
		PeriodStart:    end,
		PeriodEnd:      end,
		Value:          v,
		Status:         engine.ClassifyValue(&k, v),
		CreatedAt:      end,
	}
	e.store.values[value.ID] = value
	return value
}

func ptr[T any](v T) *T { return &v }
