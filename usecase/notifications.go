package usecase

import "fmt"

func scrapeSucceededMessage(url, title string, contentID int64) string {
	return fmt.Sprintf("✅ Great news! The content you submitted for <%s|%s> has been successfully processed and is now ready.\nContent ID: %d", url, title, contentID)
}

func scrapeFailedMessage(url string, err error) string {
	return fmt.Sprintf("⚠️ Apologies, but we encountered an issue while processing the content from <%s|%s> after multiple retries. Please try submitting it again later or contact an administrator if the problem persists.\nError: %v", url, url, err)
}

func refreshReconnectMessage(baseURL string) string {
	return fmt.Sprintf("Hi there! We tried to refresh your LinkedIn connection for AI Promoter, but it looks like your authorization has expired or been revoked. Please reconnect your LinkedIn account by visiting your profile page: %s/auth/profile", baseURL)
}

func publishReconnectMessage(baseURL string) string {
	return fmt.Sprintf("Hi there! We tried to post to LinkedIn for you, but it looks like your authorization has expired or been revoked. Please reconnect your LinkedIn account by visiting your profile page: %s/auth/profile", baseURL)
}
