package firestore

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

var _ domain.Sink = (*Store)(nil)

func TestNewStoreRequiresProject(t *testing.T) {
	if _, err := NewStore(context.Background(), ""); err == nil {
		t.Fatal("expected error without project id")
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(status.Error(codes.NotFound, "missing")) {
		t.Fatal("NotFound status should be recognised")
	}
	if isNotFound(status.Error(codes.Unavailable, "down")) {
		t.Fatal("Unavailable is not a not-found")
	}
	if isNotFound(errors.New("plain")) {
		t.Fatal("plain errors are not not-found")
	}
}
