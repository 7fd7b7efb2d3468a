package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
)

const feedUpdateURL = "https://www.linkedin.com/feed/update/%s/"

type ugcPost struct {
	Author          string          `json:"author"`
	LifecycleState  string          `json:"lifecycleState"`
	SpecificContent specificContent `json:"specificContent"`
	Visibility      visibility      `json:"visibility"`
}

type specificContent struct {
	ShareContent shareContent `json:"com.linkedin.ugc.ShareContent"`
}

type shareContent struct {
	ShareCommentary    shareCommentary `json:"shareCommentary"`
	ShareMediaCategory string          `json:"shareMediaCategory"`
}

type shareCommentary struct {
	Text string `json:"text"`
}

type visibility struct {
	MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
}

// Poster publishes member shares through the UGC Posts API.
type Poster struct {
	httpClient *http.Client
	baseURL    string
}

func NewPoster(apiBaseURL string, httpClient *http.Client) repository.IPlatformPoster {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Poster{httpClient: httpClient, baseURL: apiBaseURL}
}

func newUGCPost(authorID, text string) ugcPost {
	return ugcPost{
		Author:         "urn:li:person:" + authorID,
		LifecycleState: "PUBLISHED",
		SpecificContent: specificContent{ShareContent: shareContent{
			ShareCommentary:    shareCommentary{Text: text},
			ShareMediaCategory: "NONE",
		}},
		Visibility: visibility{MemberNetworkVisibility: "PUBLIC"},
	}
}

// Post returns *model.PlatformResponseError for any non-2xx or transport failure.
func (p *Poster) Post(ctx context.Context, accessToken, authorID, text string) (*model.PostReceipt, error) {
	payload, err := json.Marshal(newUGCPost(authorID, text))
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/ugcPosts", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &model.PlatformResponseError{Detail: err.Error(), Err: err}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.PlatformResponseError{StatusCode: resp.StatusCode, Detail: string(body)}
	}

	postID := resp.Header.Get("X-Restli-Id")
	if postID == "" {
		var created struct {
			ID string `json:"id"`
		}
		if len(body) > 0 {
			_ = json.Unmarshal(body, &created)
		}
		postID = created.ID
	}
	if postID == "" {
		return nil, &model.PlatformResponseError{StatusCode: resp.StatusCode, Detail: "response carried no post id"}
	}
	return &model.PostReceipt{PostID: postID, PostURL: fmt.Sprintf(feedUpdateURL, postID)}, nil
}
