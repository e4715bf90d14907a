package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownType    = errors.New("unknown event type")
	ErrInvalidPayload = errors.New("invalid event payload")
)

type Type string

const (
	TypeEnrollmentCreated Type = "enrollment_created"
	TypeMaterialUploaded  Type = "material_uploaded"
	TypeProfileUpdated    Type = "profile_updated"
)

// Envelope is the unit placed on the work queue. Payload is decoded lazily
// according to Type.
type Envelope struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type EnrollmentCreated struct {
	TeacherID   int64  `json:"teacher_id"`
	StudentName string `json:"student_name"`
}

type MaterialUploaded struct {
	TeacherName string  `json:"teacher_name"`
	StudentIDs  []int64 `json:"student_ids"`
}

type ProfileUpdated struct {
	UserID int64 `json:"user_id"`
}

// Notice is what an event turns into: one content string for every target.
type Notice struct {
	Targets []int64
	Content string
}

func New(typ Type, payload any, now time.Time) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal payload: %w", err)
	}
	env := Envelope{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: now.UTC(),
		Payload:    raw,
	}
	if _, err := env.Notice(); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

func (e Envelope) Notice() (Notice, error) {
	switch e.Type {
	case TypeEnrollmentCreated:
		var p EnrollmentCreated
		if err := decode(e.Payload, &p); err != nil {
			return Notice{}, err
		}
		name := strings.TrimSpace(p.StudentName)
		if p.TeacherID <= 0 || !storable(name) {
			return Notice{}, fmt.Errorf("%w: teacher_id and student_name are required", ErrInvalidPayload)
		}
		return Notice{
			Targets: []int64{p.TeacherID},
			Content: fmt.Sprintf("%s has enrolled in your course.", name),
		}, nil

	case TypeMaterialUploaded:
		var p MaterialUploaded
		if err := decode(e.Payload, &p); err != nil {
			return Notice{}, err
		}
		name := strings.TrimSpace(p.TeacherName)
		if !storable(name) || len(p.StudentIDs) == 0 {
			return Notice{}, fmt.Errorf("%w: teacher_name and student_ids are required", ErrInvalidPayload)
		}
		targets := make([]int64, 0, len(p.StudentIDs))
		seen := make(map[int64]struct{}, len(p.StudentIDs))
		for _, id := range p.StudentIDs {
			if id <= 0 {
				return Notice{}, fmt.Errorf("%w: student id %d", ErrInvalidPayload, id)
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			targets = append(targets, id)
		}
		return Notice{
			Targets: targets,
			Content: fmt.Sprintf("New material has been uploaded by %s.", name),
		}, nil

	case TypeProfileUpdated:
		var p ProfileUpdated
		if err := decode(e.Payload, &p); err != nil {
			return Notice{}, err
		}
		if p.UserID <= 0 {
			return Notice{}, fmt.Errorf("%w: user_id is required", ErrInvalidPayload)
		}
		return Notice{
			Targets: []int64{p.UserID},
			Content: "Your profile has been updated.",
		}, nil

	default:
		return Notice{}, fmt.Errorf("%w: %q", ErrUnknownType, e.Type)
	}
}

// PartitionKey keeps all events of the first target on one partition.
func (e Envelope) PartitionKey() int64 {
	n, err := e.Notice()
	if err != nil || len(n.Targets) == 0 {
		return 0
	}
	return n.Targets[0]
}

// storable reports whether name is non-empty and fits a Postgres TEXT column,
// which cannot hold NUL bytes.
func storable(name string) bool {
	return name != "" && !strings.ContainsRune(name, 0)
}

func decode(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}
