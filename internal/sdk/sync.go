package sdk

import (
	"context"
	"fmt"

	"github.com/imroc/req/v3"
)

const (
	syncListPath    = "/api/v1/sharepoint/"
	syncCreatePath  = "/api/v1/sharepoint/create"
	syncByIdPath    = "/api/v1/sharepoint/{id}"
	syncUpdatePath  = "/api/v1/sharepoint/{id}/update"
	syncExecutePath = "/api/v1/sharepoint/{id}/sync"
	syncCancelPath  = "/api/v1/sharepoint/{id}/cancel"
	syncStatusPath  = "/api/v1/sharepoint/{id}/status"
	listFolderPath  = "/api/v1/sharepoint/list-folder"
)

// SyncAPI wraps the backend's SharePoint sync endpoints.
type SyncAPI struct {
	client *req.Client
}

func newSyncAPI(client *req.Client) *SyncAPI {
	return &SyncAPI{client: client}
}

// List returns all sync jobs visible to the caller.
func (s *SyncAPI) List(ctx context.Context) ([]*SyncRecord, error) {
	var records []*SyncRecord
	res, err := s.client.R().
		SetContext(ctx).
		SetSuccessResult(&records).
		SetErrorResult(&APIError{}).
		Get(syncListPath)

	if err := handleAPIError(res, err, "sync list"); err != nil {
		return nil, err
	}

	return records, nil
}

// Get returns a single sync job by id.
func (s *SyncAPI) Get(ctx context.Context, id string) (*SyncRecord, error) {
	var record SyncRecord
	res, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetSuccessResult(&record).
		SetErrorResult(&APIError{}).
		Get(syncByIdPath)

	if err := handleAPIError(res, err, "sync get"); err != nil {
		return nil, err
	}

	return &record, nil
}

// Create registers a new sync configuration. Required fields are checked
// before any network call.
func (s *SyncAPI) Create(ctx context.Context, create *CreateSyncRequest) (*SyncRecord, error) {
	if err := validateCreate(create); err != nil {
		return nil, err
	}

	var record SyncRecord
	res, err := s.client.R().
		SetContext(ctx).
		SetBody(create).
		SetSuccessResult(&record).
		SetErrorResult(&APIError{}).
		Post(syncCreatePath)

	if err := handleAPIError(res, err, "sync create"); err != nil {
		return nil, err
	}

	return &record, nil
}

// Update changes a sync's mutable settings (name, access control).
func (s *SyncAPI) Update(ctx context.Context, id string, update *UpdateSyncRequest) (*SyncRecord, error) {
	var record SyncRecord
	res, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(update).
		SetSuccessResult(&record).
		SetErrorResult(&APIError{}).
		Post(syncUpdatePath)

	if err := handleAPIError(res, err, "sync update"); err != nil {
		return nil, err
	}

	return &record, nil
}

// Delete removes a sync configuration. Returns the status flag encoded in
// the response body; failure paths return false.
func (s *SyncAPI) Delete(ctx context.Context, id string) (bool, error) {
	var resp DeleteSyncResponse
	res, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetSuccessResult(&resp).
		SetErrorResult(&APIError{}).
		Delete(syncByIdPath)

	if err := handleAPIError(res, err, "sync delete"); err != nil {
		return false, err
	}

	return resp.Status, nil
}

// Execute starts a sync run with the caller-supplied access credential.
// Never retried: a failed execute is terminal for that attempt and the user
// must re-trigger.
func (s *SyncAPI) Execute(ctx context.Context, id string, accessToken string) (*ExecuteSyncResponse, error) {
	if accessToken == "" {
		return nil, ErrNoAccessToken
	}

	var resp ExecuteSyncResponse
	res, err := s.client.R().
		SetContext(ctx).
		SetRetryCount(0).
		SetPathParam("id", id).
		SetBody(&ExecuteSyncRequest{AccessToken: accessToken}).
		SetSuccessResult(&resp).
		SetErrorResult(&APIError{}).
		Post(syncExecutePath)

	if err := handleAPIError(res, err, "sync execute"); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Cancel asks the server to stop a running sync. The job reaches its
// terminal status through the regular status polls.
func (s *SyncAPI) Cancel(ctx context.Context, id string) (*CancelSyncResponse, error) {
	var resp CancelSyncResponse
	res, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetSuccessResult(&resp).
		SetErrorResult(&APIError{}).
		Post(syncCancelPath)

	if err := handleAPIError(res, err, "sync cancel"); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Status fetches the current state of a sync job.
func (s *SyncAPI) Status(ctx context.Context, id string) (*SyncRecord, error) {
	var record SyncRecord
	res, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetSuccessResult(&record).
		SetErrorResult(&APIError{}).
		Get(syncStatusPath)

	if err := handleAPIError(res, err, "sync status"); err != nil {
		return nil, err
	}

	return &record, nil
}

// ListFolder previews the contents of a SharePoint folder before a sync is
// created.
func (s *SyncAPI) ListFolder(ctx context.Context, list *ListFolderRequest) (*ListFolderResponse, error) {
	if list.AccessToken == "" {
		return nil, ErrNoAccessToken
	}

	var resp ListFolderResponse
	res, err := s.client.R().
		SetContext(ctx).
		SetBody(list).
		SetSuccessResult(&resp).
		SetErrorResult(&APIError{}).
		Post(listFolderPath)

	if err := handleAPIError(res, err, "list folder"); err != nil {
		return nil, err
	}

	return &resp, nil
}

func validateCreate(create *CreateSyncRequest) error {
	required := map[string]string{
		"name":         create.Name,
		"knowledge_id": create.KnowledgeID,
		"drive_id":     create.DriveID,
		"item_id":      create.ItemID,
		"endpoint":     create.Endpoint,
	}
	for field, value := range required {
		if value == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, field)
		}
	}
	return nil
}
