package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/digibhoomi/record-translator/internal/models"
)

// Artifact is the stored form of a finished translation, written to object
// storage so async clients can download it later.
type Artifact struct {
	TaskID      string                    `json:"taskId"`
	Filename    string                    `json:"filename,omitempty"`
	GeneratedAt time.Time                 `json:"generatedAt"`
	Result      *models.TranslationResult `json:"result"`
}

// MarshalArtifact serializes an artifact for storage.
func MarshalArtifact(taskID, filename string, result *models.TranslationResult) ([]byte, error) {
	artifact := Artifact{
		TaskID:      taskID,
		Filename:    filename,
		GeneratedAt: time.Now().UTC(),
		Result:      result,
	}
	data, err := json.Marshal(artifact)
	if err != nil {
		return nil, fmt.Errorf("marshal artifact: %w", err)
	}
	return data, nil
}

// UnmarshalArtifact reads a stored artifact back.
func UnmarshalArtifact(data []byte) (*Artifact, error) {
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("unmarshal artifact: %w", err)
	}
	return &artifact, nil
}

// ArtifactKey is the storage key for a task's result artifact.
func ArtifactKey(taskID string) string {
	return fmt.Sprintf("results/%s.json", taskID)
}
