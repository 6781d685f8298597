// Package uploader forwards the published per-store files to the downstream
// ingestion endpoint. One POST per artifact, no batching; the first failure
// aborts the remaining uploads.
package uploader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"obedard/liquidationworker/logger"
	cerrors "obedard/liquidationworker/pkg/errors"
	"obedard/liquidationworker/services/aggregator"
)

// payload is the ingestion contract: one body per published file
type payload struct {
	Public      string      `json:"public"`
	Ville       string      `json:"ville"`
	ID          string      `json:"id"`
	SourceFile  string      `json:"source_file"`
	Liquidation interface{} `json:"liquidation"`
}

// Uploader is the ingestion client
type Uploader struct {
	client   *resty.Client
	endpoint string
	public   string
	dryRun   bool
	log      *logger.Logger
}

// New creates an uploader against the given base URL. A bearer token is sent
// only when configured.
func New(baseURL, endpoint, token, public string, dryRun bool) *Uploader {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(30 * time.Second)
	if token != "" {
		client.SetAuthToken(token)
	}
	return &Uploader{
		client:   client,
		endpoint: "/" + strings.TrimLeft(endpoint, "/"),
		public:   public,
		dryRun:   dryRun,
		log:      logger.ForUploader(),
	}
}

// UploadAll sends every published file referenced by the catalog index, in
// order. It returns on the first failure, leaving the remaining files unsent.
func (u *Uploader) UploadAll(entries []aggregator.StoreIndexEntry, publicDir string) error {
	for _, entry := range entries {
		if err := u.uploadOne(entry, publicDir); err != nil {
			return err
		}
	}
	return nil
}

func (u *Uploader) uploadOne(entry aggregator.StoreIndexEntry, publicDir string) error {
	name := filepath.Base(entry.FilePath)
	path := filepath.Join(publicDir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		return cerrors.NewUpload(name, "failed to read published file", err)
	}
	var liquidation interface{}
	if err := json.Unmarshal(data, &liquidation); err != nil {
		return cerrors.NewUpload(name, "published file is not valid JSON", err)
	}

	body := payload{
		Public:      u.public,
		Ville:       entry.CitySlug,
		ID:          strconv.Itoa(entry.StoreID),
		SourceFile:  name,
		Liquidation: liquidation,
	}

	if u.dryRun {
		u.log.Info().Str("file", name).Str("ville", entry.CitySlug).Msg("Dry run, payload not sent")
		return nil
	}

	resp, err := u.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(u.endpoint)
	if err != nil {
		return cerrors.NewUpload(name, "upload request failed", err)
	}
	if !resp.IsSuccess() {
		return cerrors.NewUpload(name, fmt.Sprintf("upload rejected: %s", resp.Status()), nil)
	}

	u.log.Info().Str("file", name).Int("status", resp.StatusCode()).Msg("Uploaded")
	return nil
}
