package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/rotzmediagroup/storypixie-admin/metrics"
	"github.com/rotzmediagroup/storypixie-admin/models"
	"github.com/rotzmediagroup/storypixie-admin/repositories"
	"github.com/rotzmediagroup/storypixie-admin/storage"
)

// maxExportWorkers bounds concurrent uploads during an export run.
const maxExportWorkers = 4

// StoryService handles moderation decisions, cover assets, and exports.
type StoryService struct {
	stories repositories.StoryRepository
	assets  storage.Storage
}

func NewStoryService(stories repositories.StoryRepository, assets storage.Storage) *StoryService {
	return &StoryService{stories: stories, assets: assets}
}

// Review records a moderation decision on a story.
func (s *StoryService) Review(storyID, reviewerID uint, approve bool, note string) (*models.Story, error) {
	if _, err := s.stories.FindByID(storyID); err != nil {
		return nil, err
	}

	status := models.StoryRejected
	if approve {
		status = models.StoryApproved
	}

	if err := s.stories.UpdateReview(storyID, status, reviewerID, note); err != nil {
		logrus.Error("Error recording moderation decision: ", err)
		return nil, err
	}
	metrics.ModerationDecisions.WithLabelValues(string(status)).Inc()

	return s.stories.FindByID(storyID)
}

func (s *StoryService) Delete(storyID uint) error {
	story, err := s.stories.FindByID(storyID)
	if err != nil {
		return err
	}
	if story.CoverKey != "" {
		if err := s.assets.Delete(context.Background(), story.CoverKey); err != nil {
			logrus.WithFields(logrus.Fields{
				"story_id": storyID,
				"key":      story.CoverKey,
				"error":    err,
			}).Error("Error deleting cover asset")
		}
	}
	return s.stories.Delete(storyID)
}

// UploadCover stores a new cover image and points the story at it.
func (s *StoryService) UploadCover(ctx context.Context, storyID uint, body io.Reader, ext string) (string, error) {
	if _, err := s.stories.FindByID(storyID); err != nil {
		return "", err
	}

	key := fmt.Sprintf("covers/%d/%s%s", storyID, uuid.NewString(), ext)
	if err := s.assets.Upload(ctx, key, body); err != nil {
		return "", fmt.Errorf("failed to upload cover: %w", err)
	}
	if err := s.stories.SetCoverKey(storyID, key); err != nil {
		return "", err
	}
	return key, nil
}

// ExportApproved uploads every approved story as a JSON document under a
// fresh export prefix, with bounded concurrency. Returns how many stories
// were exported.
func (s *StoryService) ExportApproved(ctx context.Context) (int, string, error) {
	stories, err := s.stories.AllByStatus(models.StoryApproved)
	if err != nil {
		return 0, "", err
	}

	runID := uuid.NewString()
	prefix := fmt.Sprintf("exports/%s", runID)

	sem := semaphore.NewWeighted(maxExportWorkers)
	var wg sync.WaitGroup

	var mu sync.Mutex
	var firstErr error
	exported := 0

	for _, story := range stories {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}

		wg.Add(1)
		go func(story models.Story) {
			defer wg.Done()
			defer sem.Release(1)

			payload, err := json.Marshal(story)
			if err == nil {
				key := fmt.Sprintf("%s/story-%d.json", prefix, story.ID)
				err = s.assets.Upload(ctx, key, bytes.NewReader(payload))
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"story_id": story.ID,
					"error":    err,
				}).Error("Error exporting story")
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			exported++
			metrics.StoriesExported.Inc()
		}(story)
	}

	wg.Wait()
	return exported, prefix, firstErr
}
