package news

import "axinsight/internal/apperr"

func errNoProviderConfigured() error {
	return apperr.Configuration("no news provider configured: set NAVER_CLIENT_ID/NAVER_CLIENT_SECRET or NEWSAPI_KEY")
}
