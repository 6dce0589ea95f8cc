package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserCreated       = "user.created"
	EventTypeUserDeleted       = "user.deleted"
	EventTypeRolesAssigned     = "user.roles_assigned"
	EventTypeSuperAdminCreated = "user.super_admin_created"
	EventTypeLoginSucceeded    = "auth.login_succeeded"
)

type UserCreatedEvent struct {
	BaseEvent
	UserID int64    `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

func NewUserCreatedEvent(userID int64, email string, roles []string) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"email":   email,
				"roles":   roles,
			},
		},
		UserID: userID,
		Email:  email,
		Roles:  roles,
	}
}

type UserDeletedEvent struct {
	BaseEvent
	UserID    int64 `json:"user_id"`
	DeletedBy int64 `json:"deleted_by"`
}

func NewUserDeletedEvent(userID, deletedBy int64) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserDeleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"deleted_by": deletedBy,
			},
		},
		UserID:    userID,
		DeletedBy: deletedBy,
	}
}

type RolesAssignedEvent struct {
	BaseEvent
	UserID     int64    `json:"user_id"`
	Roles      []string `json:"roles"`
	AssignedBy int64    `json:"assigned_by"`
}

func NewRolesAssignedEvent(userID int64, roles []string, assignedBy int64) *RolesAssignedEvent {
	return &RolesAssignedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRolesAssigned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":     userID,
				"roles":       roles,
				"assigned_by": assignedBy,
			},
		},
		UserID:     userID,
		Roles:      roles,
		AssignedBy: assignedBy,
	}
}

type SuperAdminCreatedEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

func NewSuperAdminCreatedEvent(userID int64, email string) *SuperAdminCreatedEvent {
	return &SuperAdminCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSuperAdminCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"email":   email,
			},
		},
		UserID: userID,
		Email:  email,
	}
}

type LoginSucceededEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

func NewLoginSucceededEvent(userID int64, email string) *LoginSucceededEvent {
	return &LoginSucceededEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLoginSucceeded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"email":   email,
			},
		},
		UserID: userID,
		Email:  email,
	}
}
