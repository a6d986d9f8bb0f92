package internal

type Status string

const (
	StatusExtracting  Status = "Extracting"
	StatusOk          Status = "Ok"
	StatusError       Status = "Error"
	StatusQueued      Status = "Queued"
	StatusDownloading Status = "Downloading"
	StatusFinished    Status = "Finished"
	StatusConverting  Status = "Converting"
	StatusConverted   Status = "Converted"
)

// Queued -> Finished and Finished -> Converted happen when the output file is
// already on disk.
var transitions = map[Status][]Status{
	StatusExtracting:  {StatusOk, StatusError},
	StatusOk:          {StatusOk, StatusQueued},
	StatusQueued:      {StatusDownloading, StatusFinished, StatusError},
	StatusDownloading: {StatusDownloading, StatusFinished, StatusError},
	StatusFinished:    {StatusConverting, StatusConverted, StatusError},
	StatusConverting:  {StatusConverted, StatusError},
}

func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsActive reports whether a worker currently owns the job.
func (s Status) IsActive() bool {
	switch s {
	case StatusExtracting, StatusQueued, StatusDownloading, StatusConverting:
		return true
	}
	return false
}
