package deployer

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/config"
	"atelier/event"
)

type call struct {
	dir  string
	name string
	args []string
}

type fakeRunner struct {
	calls []call
	// fail maps "name arg0" to an error.
	fail map[string]error
}

func (f *fakeRunner) run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{dir: dir, name: name, args: args})
	key := name
	if len(args) > 0 {
		key += " " + args[0]
	}
	if err, ok := f.fail[key]; ok {
		return []byte("boom"), err
	}
	return nil, nil
}

func (f *fakeRunner) commands() []string {
	var out []string
	for _, c := range f.calls {
		out = append(out, strings.TrimSpace(c.name+" "+strings.Join(c.args, " ")))
	}
	return out
}

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string]*s3.PutObjectInput
	bodies  map[string]string
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Key)
	f.objects[key] = in
	f.bodies[key] = string(body)
	return &manager.UploadOutput{}, nil
}

// deployedTargets returns the targets of queued deploy.done events.
func deployedTargets(sub event.Subscription) []string {
	var targets []string
	for {
		select {
		case msg := <-sub.Receiver:
			targets = append(targets, msg.Fields["target"].(string))
		default:
			return targets
		}
	}
}

func writePublic(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "style.css"), []byte("body{}"), 0644))
	return dir
}

func TestDeployNone(t *testing.T) {
	cfg := config.Default()
	d := NewDeployer(cfg)
	r := &fakeRunner{}
	d.run = r.run

	require.NoError(t, d.Deploy(context.Background(), t.TempDir()))
	assert.Empty(t, r.calls)
}

func TestDeployUnknownMethod(t *testing.T) {
	cfg := config.Default()
	cfg.Deploy.Method = "ftp"

	err := NewDeployer(cfg).Deploy(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ftp")
}

func TestDeployRsyncPipeline(t *testing.T) {
	cfg := config.Default()
	cfg.Deploy.Method = "rsync"
	cfg.Deploy.MirrorDir = filepath.Join(t.TempDir(), "mirror")
	cfg.Deploy.Git.AutoCommit = true
	cfg.Deploy.Git.MirrorRepo = "git@example.com:me/site.git"
	cfg.Deploy.Rsync = config.RsyncConfig{
		Enabled:    true,
		User:       "deploy",
		Host:       "web.example.com",
		TargetPath: "/var/www/site",
		SSHKey:     "/home/me/.ssh/id_ed25519",
	}

	public := writePublic(t)
	// git diff --quiet exits 1 when there are staged changes
	r := &fakeRunner{fail: map[string]error{"git diff": errors.New("exit status 1")}}
	d := NewDeployer(cfg)
	d.run = r.run

	sub := event.Subscribe("deploy.done")
	defer event.Unsubscribe(sub)

	require.NoError(t, d.Deploy(context.Background(), public))

	cmds := r.commands()
	require.NotEmpty(t, cmds)
	assert.Equal(t, "rsync -a --delete --exclude .git "+public+"/ "+cfg.Deploy.MirrorDir+"/", cmds[0])
	assert.Contains(t, cmds, "git init")
	assert.Contains(t, cmds, "git remote add origin git@example.com:me/site.git")
	assert.Contains(t, cmds, "git add .")
	assert.Contains(t, cmds, "git push")

	last := r.calls[len(r.calls)-1]
	assert.Equal(t, "rsync", last.name)
	assert.Contains(t, last.args, "ssh -i /home/me/.ssh/id_ed25519")
	assert.Equal(t, "deploy@web.example.com:/var/www/site", last.args[len(last.args)-1])

	assert.Equal(t, []string{"deploy@web.example.com:/var/www/site"}, deployedTargets(sub))
	assert.DirExists(t, cfg.Deploy.MirrorDir)
}

func TestDeployRsyncNothingToCommit(t *testing.T) {
	cfg := config.Default()
	cfg.Deploy.Method = "rsync"
	cfg.Deploy.MirrorDir = t.TempDir()
	cfg.Deploy.Git.AutoCommit = true
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.Deploy.MirrorDir, ".git"), 0755))

	r := &fakeRunner{}
	d := NewDeployer(cfg)
	d.run = r.run

	require.NoError(t, d.Deploy(context.Background(), writePublic(t)))

	cmds := r.commands()
	assert.NotContains(t, cmds, "git init")
	assert.NotContains(t, cmds, "git push")
	assert.Contains(t, cmds, "git diff --cached --quiet")
}

func TestDeployRsyncFailure(t *testing.T) {
	cfg := config.Default()
	cfg.Deploy.Method = "rsync"
	cfg.Deploy.MirrorDir = t.TempDir()

	r := &fakeRunner{fail: map[string]error{"rsync -a": errors.New("exit status 23")}}
	d := NewDeployer(cfg)
	d.run = r.run

	err := d.Deploy(context.Background(), writePublic(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to sync to mirror")
	assert.Contains(t, err.Error(), "boom")
}

func TestDeployS3(t *testing.T) {
	cfg := config.Default()
	cfg.Deploy.Method = "s3"
	cfg.Deploy.S3 = config.S3Config{Bucket: "portfolio", Region: "eu-north-1", Prefix: "site"}

	u := &fakeUploader{objects: map[string]*s3.PutObjectInput{}, bodies: map[string]string{}}
	d := NewDeployer(cfg)
	d.SetUploader(u)

	sub := event.Subscribe("deploy.done")
	defer event.Unsubscribe(sub)

	require.NoError(t, d.Deploy(context.Background(), writePublic(t)))

	require.Len(t, u.objects, 2)
	index := u.objects["site/index.html"]
	require.NotNil(t, index)
	assert.Equal(t, "portfolio", aws.ToString(index.Bucket))
	assert.Contains(t, aws.ToString(index.ContentType), "text/html")
	assert.Equal(t, "no-cache", aws.ToString(index.CacheControl))
	assert.Equal(t, "<html></html>", u.bodies["site/index.html"])

	css := u.objects["site/css/style.css"]
	require.NotNil(t, css)
	assert.Equal(t, "public, max-age=86400", aws.ToString(css.CacheControl))

	assert.Equal(t, []string{"s3://portfolio/site"}, deployedTargets(sub))
}

func TestDeployS3UploadError(t *testing.T) {
	cfg := config.Default()
	cfg.Deploy.Method = "s3"
	cfg.Deploy.S3.Bucket = "portfolio"

	d := NewDeployer(cfg)
	d.SetUploader(&fakeUploader{err: errors.New("access denied")})

	sub := event.Subscribe("deploy.done")
	defer event.Unsubscribe(sub)

	err := d.Deploy(context.Background(), writePublic(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Empty(t, deployedTargets(sub))
}
