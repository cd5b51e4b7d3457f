package engine

import (
	"testing"
	"time"

	"github.com/agentdouble/kpix/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAggregateDashboardEmpty(t *testing.T) {
	dash := models.Dashboard{ID: primitive.NewObjectID(), Title: "Ops"}

	got := AggregateDashboard(dash, nil, nil, nil, day("2024-06-01"))

	assert.Equal(t, 0, got.TotalKPIs)
	assert.Equal(t, map[models.Status]int{
		models.StatusGreen:  0,
		models.StatusOrange: 0,
		models.StatusRed:    0,
	}, got.StatusBreakdown)
	assert.Zero(t, got.OpenActions)
	assert.Zero(t, got.OverdueActions)
}

func TestAggregateDashboard(t *testing.T) {
	org := primitive.NewObjectID()
	dash := models.Dashboard{ID: primitive.NewObjectID(), OrganizationID: org, Title: "Production", ProcessName: "Fabrication"}
	other := primitive.NewObjectID()

	green := models.KPI{ID: primitive.NewObjectID(), DashboardID: dash.ID, OrganizationID: org, IsActive: true}
	red := models.KPI{ID: primitive.NewObjectID(), DashboardID: dash.ID, OrganizationID: org, IsActive: true}
	novalue := models.KPI{ID: primitive.NewObjectID(), DashboardID: dash.ID, OrganizationID: org, IsActive: true}
	inactive := models.KPI{ID: primitive.NewObjectID(), DashboardID: dash.ID, OrganizationID: org, IsActive: false}
	elsewhere := models.KPI{ID: primitive.NewObjectID(), DashboardID: other, OrganizationID: org, IsActive: true}

	latest := map[primitive.ObjectID][]models.KPIValue{
		green.ID:     {{Status: models.StatusGreen}, {Status: models.StatusRed}},
		red.ID:       {{Status: models.StatusRed}},
		inactive.ID:  {{Status: models.StatusRed}},
		elsewhere.ID: {{Status: models.StatusOrange}},
	}

	today := day("2024-06-10")
	past := day("2024-06-09")
	todayDue := day("2024-06-10")
	actions := []models.ActionPlan{
		{KPIID: red.ID, OrganizationID: org, Status: models.ActionOpen, DueDate: &past},
		{KPIID: red.ID, OrganizationID: org, Status: models.ActionInProgress, DueDate: &todayDue},
		{KPIID: green.ID, OrganizationID: org, Status: models.ActionOpen},
		{KPIID: green.ID, OrganizationID: org, Status: models.ActionDone, DueDate: &past},
		{KPIID: red.ID, OrganizationID: org, Status: models.ActionCancelled, DueDate: &past},
		{KPIID: inactive.ID, OrganizationID: org, Status: models.ActionOpen, DueDate: &past},
		{KPIID: elsewhere.ID, OrganizationID: org, Status: models.ActionOpen, DueDate: &past},
	}

	got := AggregateDashboard(dash, []models.KPI{green, red, novalue, inactive, elsewhere}, latest, actions, today.Add(15*time.Hour))

	assert.Equal(t, dash.ID, got.DashboardID)
	assert.Equal(t, "Fabrication", got.ProcessName)
	assert.Equal(t, 3, got.TotalKPIs)
	assert.Equal(t, 1, got.StatusBreakdown[models.StatusGreen])
	assert.Equal(t, 0, got.StatusBreakdown[models.StatusOrange])
	assert.Equal(t, 1, got.StatusBreakdown[models.StatusRed])
	assert.Equal(t, 3, got.OpenActions)
	assert.Equal(t, 1, got.OverdueActions)
}

func TestAggregateDashboardIgnoresOtherOrganizations(t *testing.T) {
	org := primitive.NewObjectID()
	dash := models.Dashboard{ID: primitive.NewObjectID(), OrganizationID: org}
	foreign := models.KPI{ID: primitive.NewObjectID(), DashboardID: dash.ID, OrganizationID: primitive.NewObjectID(), IsActive: true}

	got := AggregateDashboard(dash, []models.KPI{foreign}, nil, nil, day("2024-01-01"))
	assert.Zero(t, got.TotalKPIs)
}
