package collection

import (
	"context"
	"encoding/json"
	"fmt"

	"dharmabot/internal/domain"
	"dharmabot/internal/domain/repositories"
)

// audioBlob is stored as JSON so every KV backend can hold it.
type audioBlob struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// AudioStore keeps one recording per key.
type AudioStore struct {
	kv repositories.KVStore
}

func NewAudioRepository(kv repositories.KVStore) repositories.AudioRepository {
	return &AudioStore{kv: kv}
}

func audioKey(ownerID, ref string) string {
	return OwnerKey(ownerID, KeyAudio+":"+ref)
}

func (s *AudioStore) Put(ctx context.Context, ownerID, ref string, data []byte, mimeType string) error {
	blob, err := json.Marshal(audioBlob{MIMEType: mimeType, Data: data})
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, audioKey(ownerID, ref), blob); err != nil {
		return fmt.Errorf("save audio: %w", err)
	}
	return nil
}

func (s *AudioStore) Get(ctx context.Context, ownerID, ref string) ([]byte, string, error) {
	data, ok, err := s.kv.Get(ctx, audioKey(ownerID, ref))
	if err != nil {
		return nil, "", fmt.Errorf("load audio: %w", err)
	}
	if !ok {
		return nil, "", &domain.NotFoundError{Message: "recording not found"}
	}
	var blob audioBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, "", fmt.Errorf("decode audio: %w", err)
	}
	return blob.Data, blob.MIMEType, nil
}

func (s *AudioStore) Delete(ctx context.Context, ownerID, ref string) error {
	return s.kv.Delete(ctx, audioKey(ownerID, ref))
}
