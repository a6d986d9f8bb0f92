package internal

import "errors"

var (
	ErrInvalidURL = errors.New("not a valid url")
	ErrExtraction = errors.New("metadata extraction failed")
	ErrTransferIO = errors.New("transfer failed")
	ErrTranscode  = errors.New("transcode failed")
	ErrCancelled  = errors.New("cancelled")
)
