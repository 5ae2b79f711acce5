package library

import "github.com/yhkl-dev/rainplayer/domain"

// Library turns a user's selection into files for the playlist
type Library interface {
	// Select expands paths (files, directories or glob patterns) into files
	// in selection order. Non-audio files are returned too; the playlist
	// decides what to admit.
	Select(paths ...string) ([]domain.File, error)
}
