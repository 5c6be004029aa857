package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

// githubAPI is the releases API root.
var githubAPI = "https://api.github.com"

var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
	Assets     []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// pickAsset prefers an asset naming a platform; otherwise the first asset.
func (r githubRelease) pickAsset() string {
	first := ""
	for _, a := range r.Assets {
		n := strings.ToLower(a.Name)
		for _, hint := range []string{"darwin", "linux", "windows", "amd64", "arm64"} {
			if strings.Contains(n, hint) {
				return a.BrowserDownloadURL
			}
		}
		if first == "" {
			first = a.BrowserDownloadURL
		}
	}
	return first
}

// detectLatest returns the highest semver-tagged published release of repo,
// or nil when there is none. Tags such as "release-v1.2.3" are accepted.
func detectLatest(ctx context.Context, repo string) (*selfupdate.Release, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/repos/%s/releases", githubAPI, repo), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var releases []githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("failed to decode github releases: %w", err)
	}

	var candidates []*selfupdate.Release
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			match = semverRe.FindString(r.Name)
		}
		v, perr := semver.ParseTolerant(match)
		if match == "" || perr != nil {
			debugf("skipping release %q: no semver", r.TagName)
			continue
		}
		candidates = append(candidates, &selfupdate.Release{
			Version:  v,
			AssetURL: r.pickAsset(),
			Name:     r.Name,
		})
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Version.GT(candidates[j].Version) })
	return candidates[0], nil
}

// UpdateStatus is the outcome of comparing the running build with GitHub.
type UpdateStatus struct {
	Current semver.Version
	Latest  *selfupdate.Release
}

// Available reports whether Latest is newer than Current.
func (s UpdateStatus) Available() bool {
	return s.Latest != nil && s.Latest.Version.GT(s.Current)
}

// CheckForUpdates compares Version with the newest release of Repo.
func CheckForUpdates(ctx context.Context) (UpdateStatus, error) {
	cur, err := semver.ParseTolerant(Version)
	if err != nil {
		Logger.Warn("could not parse current version", "version", Version, "err", err)
	}
	latest, err := detectLatest(ctx, Repo)
	if err != nil {
		return UpdateStatus{Current: cur}, fmt.Errorf("update check failed: %w", err)
	}
	return UpdateStatus{Current: cur, Latest: latest}, nil
}

// RunUpdate checks for a newer release, asks for confirmation and replaces
// the running executable, then re-executes it.
func RunUpdate(ctx context.Context) error {
	st, err := CheckForUpdates(ctx)
	fmt.Printf("Current version: %s\n", Version)
	if err != nil {
		return err
	}
	if st.Latest == nil {
		fmt.Printf("No releases found for %s.\n", Repo)
		return nil
	}
	fmt.Printf("Latest version: %s\n", st.Latest.Version)
	if !st.Available() {
		fmt.Println("You are already running the latest version.")
		return nil
	}
	if st.Latest.AssetURL == "" {
		fmt.Printf("Version %s is available but has no downloadable asset.\n", st.Latest.Version)
		return nil
	}
	answer, err := PromptLine(fmt.Sprintf("A new version (%s) is available. Update now? (y/N): ", st.Latest.Version))
	if err != nil {
		return fmt.Errorf("failed reading input: %w", err)
	}
	if a := strings.ToLower(answer); a != "y" && a != "yes" {
		fmt.Println("Update cancelled.")
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	Logger.Info("updating", "from", Version, "to", st.Latest.Version, "exe", exe)
	if err := selfupdate.UpdateTo(st.Latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	argv := append([]string{exe}, os.Args[1:]...)
	if err := syscall.Exec(exe, argv, os.Environ()); err != nil {
		cmd := exec.Command(exe, os.Args[1:]...)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
		if startErr := cmd.Start(); startErr != nil {
			fmt.Printf("Updated to %s; restart the application manually (%v).\n", st.Latest.Version, startErr)
			return nil
		}
		os.Exit(0)
	}
	return nil
}
