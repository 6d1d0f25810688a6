package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/legalmind/legalmind/internal/core/domain"
)

func TestUploadStoresRecordsAndPublishes(t *testing.T) {
	repo := &fakeDocumentRepository{}
	storage := &fakeObjectStorage{}
	queue := &fakeQueue{}
	uc := NewIngestDocumentUseCase(repo, storage, queue)

	doc, err := uc.Upload(context.Background(), "My Contract.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.ID == "" {
		t.Fatal("expected generated document id")
	}
	if doc.Status != domain.StatusUploaded {
		t.Fatalf("expected uploaded status, got %s", doc.Status)
	}
	if doc.StoragePath != doc.ID+"_My_Contract.pdf" {
		t.Fatalf("unexpected storage key %q", doc.StoragePath)
	}

	if _, ok := storage.saved[doc.StoragePath]; !ok {
		t.Fatalf("file not saved under %q", doc.StoragePath)
	}
	if len(repo.created) != 1 || repo.created[0].ID != doc.ID {
		t.Fatalf("expected one created record for %s", doc.ID)
	}
	if len(queue.published) != 1 || queue.published[0] != doc.ID {
		t.Fatalf("expected one published event for %s, got %v", doc.ID, queue.published)
	}
}

func TestUploadStorageFailureStopsPipeline(t *testing.T) {
	repo := &fakeDocumentRepository{}
	storage := &fakeObjectStorage{saveErr: errors.New("disk full")}
	queue := &fakeQueue{}
	uc := NewIngestDocumentUseCase(repo, storage, queue)

	_, err := uc.Upload(context.Background(), "contract.pdf", "application/pdf", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(repo.created) != 0 {
		t.Fatal("record must not be created when storage fails")
	}
	if len(queue.published) != 0 {
		t.Fatal("event must not be published when storage fails")
	}
}

func TestUploadPublishFailureSurfaces(t *testing.T) {
	repo := &fakeDocumentRepository{}
	storage := &fakeObjectStorage{}
	queue := &fakeQueue{publishErr: errors.New("nats down")}
	uc := NewIngestDocumentUseCase(repo, storage, queue)

	_, err := uc.Upload(context.Background(), "contract.pdf", "application/pdf", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "publish") {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"Zmluva o dielo.pdf":  "Zmluva_o_dielo.pdf",
		"../../etc/passwd":    "passwd",
		"príloha č.1.docx":    "pr_loha__.1.docx",
		"report-2026_v2.xlsx": "report-2026_v2.xlsx",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q): expected %q, got %q", in, want, got)
		}
	}
}
