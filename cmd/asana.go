package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/taskcal/internal/shared"
	"github.com/urfave/cli/v3"
)

// AsanaTags lists the workspace tags, marking the configured sync tag.
func (r *Runner) AsanaTags(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.asanaService()
	if err != nil {
		return err
	}

	tags, err := svc.Tags(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tags, true)
	}

	r.writePlain("Found %d tags:\n\n", len(tags))
	for _, tag := range tags {
		marker := " "
		if strings.EqualFold(tag.Name, r.config.Sync.Tag) {
			marker = "*"
		}
		r.writePlain("%s %s (%s)\n", marker, tag.Name, tag.GID)
	}
	return nil
}

// AsanaTag adds the sync tag to a task, creating the tag when the workspace lacks it.
func (r *Runner) AsanaTag(ctx context.Context, cmd *cli.Command) error {
	taskID := cmd.StringArg("task-id")
	if taskID == "" {
		return fmt.Errorf("%w: task-id", shared.ErrMissingArgument)
	}

	tag := cmd.String("tag")
	if tag == "" {
		tag = r.config.Sync.Tag
	}

	svc, err := r.asanaService()
	if err != nil {
		return err
	}

	if err := svc.AddTagToTask(ctx, taskID, tag); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.logger.Info("tagged task", "task_id", taskID, "tag", tag)
	return r.writePlain("✓ Tagged task %s with %q\n", taskID, tag)
}

// AsanaWhoami shows the user behind the configured access token.
func (r *Runner) AsanaWhoami(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.asanaService()
	if err != nil {
		return err
	}

	user, err := svc.Me(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	return r.writePlain("%s <%s> (%s)\n", user.Name, user.Email, user.GID)
}
