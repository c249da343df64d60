// Package deployer publishes the built site: mirrored and pushed with
// rsync/git, or uploaded to an S3 bucket.
package deployer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"atelier/config"
	"atelier/event"
)

var log = event.Log

// Runner executes an external command in dir and returns its combined
// output.
type Runner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Deployer handles deployment pipeline
type Deployer struct {
	cfg      *config.Config
	run      Runner
	uploader Uploader
}

// NewDeployer creates a new deployer
func NewDeployer(cfg *config.Config) *Deployer {
	return &Deployer{cfg: cfg, run: execRunner}
}

// SetUploader replaces the S3 uploader.
func (d *Deployer) SetUploader(u Uploader) {
	d.uploader = u
}

// Deploy runs the complete deployment pipeline
func (d *Deployer) Deploy(ctx context.Context, publicDir string) error {
	log.Infof("🚀 Starting deployment pipeline...")

	var target string
	switch strings.ToLower(d.cfg.Deploy.Method) {
	case "", "none":
		log.Infof("deploy method is none, nothing to do")
		return nil
	case "s3":
		n, err := d.uploadToS3(ctx, publicDir)
		if err != nil {
			return fmt.Errorf("failed to upload to s3: %w", err)
		}
		target = fmt.Sprintf("s3://%s/%s", d.cfg.Deploy.S3.Bucket, d.cfg.Deploy.S3.Prefix)
		log.Infof("✓ Uploaded %d files to %s", n, target)
	case "rsync":
		mirrorDir := d.cfg.Deploy.MirrorDir

		// 1. Sync public to mirror
		if err := d.syncToMirror(ctx, publicDir, mirrorDir); err != nil {
			return fmt.Errorf("failed to sync to mirror: %w", err)
		}

		// 2. Git commit and push mirror
		if d.cfg.Deploy.Git.AutoCommit {
			if err := d.gitCommitAndPush(ctx, mirrorDir); err != nil {
				return fmt.Errorf("failed to git commit/push: %w", err)
			}
		}

		// 3. Rsync to webhost
		target = mirrorDir
		if d.cfg.Deploy.Rsync.Enabled {
			if err := d.rsyncToWebhost(ctx, mirrorDir); err != nil {
				return fmt.Errorf("failed to rsync to webhost: %w", err)
			}
			target = d.rsyncTarget()
		}
	default:
		return fmt.Errorf("unknown deploy method %q", d.cfg.Deploy.Method)
	}

	event.Publish("deploy.done", event.Data{"target": target})

	log.Infof("✅ Deployment complete!")
	return nil
}

// syncToMirror copies public directory to mirror using rsync for efficiency.
func (d *Deployer) syncToMirror(ctx context.Context, publicDir, mirrorDir string) error {
	log.Infof("📋 Syncing public → mirror...")

	// Ensure the mirror directory exists
	if err := os.MkdirAll(mirrorDir, 0755); err != nil {
		return fmt.Errorf("failed to create mirror directory: %w", err)
	}

	// --exclude keeps the .git directory in the mirror
	args := []string{
		"-a",
		"--delete",
		"--exclude", ".git",
		publicDir + "/", // Trailing slash is important!
		mirrorDir + "/",
	}

	output, err := d.run(ctx, "", "rsync", args...)
	if err != nil {
		return fmt.Errorf("rsync to mirror failed: %w\nOutput: %s", err, string(output))
	}

	log.Infof("✓ Synced to mirror: %s", mirrorDir)
	return nil
}

// gitCommitAndPush commits and pushes mirror to private repo
func (d *Deployer) gitCommitAndPush(ctx context.Context, mirrorDir string) error {
	log.Infof("📦 Committing and pushing to git...")

	// Initialize git repo if not exists
	gitDir := filepath.Join(mirrorDir, ".git")
	if _, err := os.Stat(gitDir); os.IsNotExist(err) {
		if err := d.gitInit(ctx, mirrorDir); err != nil {
			return err
		}
	}

	if output, err := d.run(ctx, mirrorDir, "git", "add", "."); err != nil {
		return fmt.Errorf("git add failed: %s", string(output))
	}

	// Check if there are changes to commit
	if _, err := d.run(ctx, mirrorDir, "git", "diff", "--cached", "--quiet"); err == nil {
		log.Infof("ℹ️  No changes to commit")
		return nil
	}

	commitMsg := fmt.Sprintf("Deploy: %s", time.Now().Format("2006-01-02 15:04:05"))
	if output, err := d.run(ctx, mirrorDir, "git", "commit", "-m", commitMsg); err != nil {
		return fmt.Errorf("git commit failed: %s", string(output))
	}

	if output, err := d.run(ctx, mirrorDir, "git", "push"); err != nil {
		return fmt.Errorf("git push failed: %s", string(output))
	}

	log.Infof("✓ Pushed to git: %s", d.cfg.Deploy.Git.MirrorRepo)
	return nil
}

// gitInit initializes git repo and sets remote
func (d *Deployer) gitInit(ctx context.Context, mirrorDir string) error {
	log.Infof("Initializing git repository...")

	if output, err := d.run(ctx, mirrorDir, "git", "init"); err != nil {
		return fmt.Errorf("git init failed: %s", string(output))
	}

	if output, err := d.run(ctx, mirrorDir, "git", "remote", "add", "origin", d.cfg.Deploy.Git.MirrorRepo); err != nil {
		return fmt.Errorf("git remote add failed: %s", string(output))
	}

	// Set default branch to main
	if output, err := d.run(ctx, mirrorDir, "git", "branch", "-M", "main"); err != nil {
		return fmt.Errorf("git branch failed: %s", string(output))
	}

	log.Infof("✓ Git repository initialized")
	return nil
}

func (d *Deployer) rsyncTarget() string {
	r := d.cfg.Deploy.Rsync
	if r.User == "" {
		return fmt.Sprintf("%s:%s", r.Host, r.TargetPath)
	}
	return fmt.Sprintf("%s@%s:%s", r.User, r.Host, r.TargetPath)
}

// rsyncToWebhost syncs mirror to webhost using rsync
func (d *Deployer) rsyncToWebhost(ctx context.Context, mirrorDir string) error {
	log.Infof("🌐 Deploying to webhost via rsync...")

	target := d.rsyncTarget()

	args := []string{
		"-avz",
		"--delete", // Remove files on remote that don't exist in source
		"--exclude", ".git",
	}

	// Add SSH key if specified
	if d.cfg.Deploy.Rsync.SSHKey != "" {
		args = append(args, "-e", fmt.Sprintf("ssh -i %s", d.cfg.Deploy.Rsync.SSHKey))
	}

	args = append(args, mirrorDir+"/", target)

	output, err := d.run(ctx, "", "rsync", args...)
	if err != nil {
		return fmt.Errorf("rsync failed: %s", string(output))
	}

	log.Infof("✓ Deployed to: %s", target)
	return nil
}
