package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Request bodies. Dates travel as strings (2006-01-02 or RFC 3339) and are
// parsed by the services so both the API and imports share one parser.

type SignupRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
	FullName         string `json:"full_name" validate:"required,max=255"`
	OrganizationName string `json:"organization_name" validate:"required,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,max=255"`
	Role     Role   `json:"role" validate:"omitempty,oneof=ADMIN USER"`
}

type CreateDashboardRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
	ProcessName string `json:"process_name" validate:"max=255"`
}

type UpdateDashboardRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	ProcessName *string `json:"process_name" validate:"omitempty,max=255"`
}

type CreateKPIRequest struct {
	Name            string              `json:"name" validate:"required,max=255"`
	Unit            string              `json:"unit" validate:"max=50"`
	Frequency       Frequency           `json:"frequency" validate:"required,oneof=DAILY WEEKLY MONTHLY"`
	Direction       Direction           `json:"direction" validate:"required,oneof=UP_IS_BETTER DOWN_IS_BETTER"`
	ThresholdGreen  *float64            `json:"threshold_green" validate:"required"`
	ThresholdOrange *float64            `json:"threshold_orange" validate:"required"`
	ThresholdRed    *float64            `json:"threshold_red" validate:"required"`
	OwnerID         *primitive.ObjectID `json:"owner_id"`
	IsActive        *bool               `json:"is_active"`
}

type UpdateKPIRequest struct {
	Name            *string             `json:"name" validate:"omitempty,min=1,max=255"`
	Unit            *string             `json:"unit" validate:"omitempty,max=50"`
	Frequency       *Frequency          `json:"frequency" validate:"omitempty,oneof=DAILY WEEKLY MONTHLY"`
	Direction       *Direction          `json:"direction" validate:"omitempty,oneof=UP_IS_BETTER DOWN_IS_BETTER"`
	ThresholdGreen  *float64            `json:"threshold_green"`
	ThresholdOrange *float64            `json:"threshold_orange"`
	ThresholdRed    *float64            `json:"threshold_red"`
	OwnerID         *primitive.ObjectID `json:"owner_id"`
	IsActive        *bool               `json:"is_active"`
}

type SubmitValueRequest struct {
	PeriodStart string   `json:"period_start" validate:"required"`
	PeriodEnd   string   `json:"period_end"`
	Value       *float64 `json:"value" validate:"required"`
	Comment     string   `json:"comment" validate:"max=500"`
}

type CreateActionRequest struct {
	Title       string              `json:"title" validate:"required,max=255"`
	Description string              `json:"description" validate:"max=2000"`
	OwnerID     *primitive.ObjectID `json:"owner_id"`
	DueDate     string              `json:"due_date"`
	Progress    int                 `json:"progress" validate:"min=0,max=100"`
	Status      ActionStatus        `json:"status" validate:"omitempty,oneof=OPEN IN_PROGRESS DONE CANCELLED"`
}

type UpdateActionRequest struct {
	Title       *string             `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string             `json:"description" validate:"omitempty,max=2000"`
	OwnerID     *primitive.ObjectID `json:"owner_id"`
	DueDate     *string             `json:"due_date"`
	Progress    *int                `json:"progress" validate:"omitempty,min=0,max=100"`
	Status      *ActionStatus       `json:"status" validate:"omitempty,oneof=OPEN IN_PROGRESS DONE CANCELLED"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}
