package ui

import (
	"github.com/desertthunder/syncx/internal/models"
	"github.com/desertthunder/syncx/internal/tasks"
)

// collectionsFetchedMsg carries the source directory listing.
type collectionsFetchedMsg struct {
	collections []models.Collection
	err         error
}

type progressUpdateMsg tasks.ProgressUpdate

// syncCompleteMsg is sent once the engine returns. result may be partial when err is set.
type syncCompleteMsg struct {
	result *tasks.SyncResult
	err    error
}
