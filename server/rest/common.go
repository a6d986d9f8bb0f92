package rest

import (
	"github.com/marcopiovanello/yt-fetch/server/archiver"
	"github.com/marcopiovanello/yt-fetch/server/internal/kv"
	"github.com/marcopiovanello/yt-fetch/server/internal/queue"
	"github.com/marcopiovanello/yt-fetch/server/internal/thumbnail"
)

type ContainerArgs struct {
	MDB          *kv.Store
	MQ           *queue.MessageQueue
	Archive      *archiver.Repository
	Thumbnails   *thumbnail.Cache
	DownloadPath string
}

type PreviewRequest struct {
	URL string `json:"url"`
}

type PreviewResponse struct {
	RequestId string `json:"requestId"`
}

type TransferRequest struct {
	Id       string `json:"id"`
	Filetype string `json:"filetype"`
	Title    string `json:"title,omitempty"`
	Uploader string `json:"uploader,omitempty"`
}

type ConvertRequest struct {
	Id string `json:"id"`
}

type FreeSpaceResponse struct {
	Path  string `json:"path"`
	Bytes uint64 `json:"bytes"`
	Human string `json:"human"`
}
