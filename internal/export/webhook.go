package export

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/inkport/inkport/internal/config"
	"github.com/inkport/inkport/internal/vault"
)

// EnvironmentHeader carries the deploy environment on Vercel hook requests.
const EnvironmentHeader = "X-Inkport-Environment"

// runNetlify triggers a site build through the Netlify API using the
// vault-stored bearer token.
func (m *Manager) runNetlify(cfg *config.ExportConfig, req Request, cancel *atomic.Bool, t *trail) Response {
	section := cfg.Netlify
	if section == nil || !section.Enabled {
		return t.fail(CodeTargetDisabled, "Netlify export is disabled", "")
	}
	if !section.TriggerDeploy {
		return t.fail(CodeTargetDisabled, "Netlify deploy trigger disabled", "")
	}

	if cancel.Load() {
		return t.cancelled()
	}

	siteID := strings.TrimSpace(section.SiteID)
	if siteID == "" {
		return t.fail(CodeConfigInvalid, "Invalid Netlify configuration", "site_id missing")
	}

	token, found, err := m.vault.Get(req.FilePath, string(TargetNetlify), req.Profile, vault.KindToken)
	if err != nil {
		return t.fail(CodeNetlifyFailed, "Unable to access credential storage", err.Error())
	}
	if !found {
		return t.fail(CodeNetlifyMissingToken, "Netlify token missing (set in app)", "")
	}

	if cancel.Load() {
		return t.cancelled()
	}

	url := fmt.Sprintf("%s/api/v1/sites/%s/builds", m.netlifyAPI, siteID)
	t.info("Triggering Netlify deploy", siteID)

	request, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		return t.fail(CodeNetlifyFailed, "Netlify deploy failed", err.Error())
	}
	request.Header.Set("Authorization", "Bearer "+token)

	response, err := m.httpClient.Do(request)
	if err != nil {
		return t.fail(CodeNetlifyFailed, "Netlify deploy failed", err.Error())
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return t.fail(CodeNetlifyFailed, "Netlify deploy failed", responseDetail(response))
	}
	return t.done("Netlify deploy triggered")
}

// runVercel fires the configured deploy hook with the target environment in
// a custom header.
func (m *Manager) runVercel(cfg *config.ExportConfig, cancel *atomic.Bool, t *trail) Response {
	section := cfg.Vercel
	if section == nil || !section.Enabled {
		return t.fail(CodeTargetDisabled, "Vercel export is disabled", "")
	}

	hookURL := strings.TrimSpace(section.DeployHookURL)
	if hookURL == "" {
		return t.fail(CodeConfigInvalid, "Invalid Vercel configuration", "deploy_hook_url missing")
	}

	if cancel.Load() {
		return t.cancelled()
	}

	environment := section.Environment
	if environment == "" {
		environment = config.EnvProduction
	}
	projectName := section.ProjectName
	if projectName == "" {
		projectName = "vercel"
	}
	t.info("Triggering Vercel deploy", fmt.Sprintf("%s (%s)", projectName, environment))

	request, err := http.NewRequest(http.MethodPost, hookURL, nil)
	if err != nil {
		return t.fail(CodeVercelFailed, "Vercel deploy failed", err.Error())
	}
	request.Header.Set(EnvironmentHeader, string(environment))

	response, err := m.httpClient.Do(request)
	if err != nil {
		return t.fail(CodeVercelFailed, "Vercel deploy failed", err.Error())
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return t.fail(CodeVercelFailed, "Vercel deploy failed", responseDetail(response))
	}
	return t.done("Vercel deploy triggered")
}

// responseDetail prefers the response body over the bare status text. The
// body is kept as opaque diagnostic text, never parsed.
func responseDetail(response *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(response.Body, 4096))
	if err == nil {
		if text := strings.TrimSpace(string(body)); text != "" {
			return text
		}
	}
	return response.Status
}
