// cmd/learnhubctl/courses.go
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/dalemusser/learnhub/internal/app/client"
	"github.com/dalemusser/learnhub/internal/app/editor"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func parseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("bad course id %q", s)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(cmd *cobra.Command, res client.Result) {
	out := cmd.OutOrStdout()
	if res.Message != "" {
		fmt.Fprintln(out, res.Message)
	}
	fmt.Fprintf(out, "%s  %s  status=%s published=%t version=%d\n",
		res.Course.ID.Hex(), res.Course.Title, res.Course.ApprovalStatus, res.Course.Published, res.Course.Version)
}

/* -------------------------------- submit ------------------------------- */

func newSubmitCmd(g *globalOptions) *cobra.Command {
	var (
		courseID string
		review   bool
	)
	cmd := &cobra.Command{
		Use:   "submit FILE",
		Short: "Create or update a course from a YAML curriculum file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			cf, err := loadCourseFile(args[0])
			if err != nil {
				return err
			}
			c, err := g.client()
			if err != nil {
				return err
			}

			e := editor.New(c, editor.WithLogger(g.log), editor.WithStateObserver(func(from, to editor.State) {
				g.log.Debug("editor state", zap.Stringer("from", from), zap.Stringer("to", to))
			}))
			if courseID != "" {
				id, err := parseID(courseID)
				if err != nil {
					return err
				}
				existing, err := c.Get(ctx, id)
				if err != nil {
					return err
				}
				if err := e.Load(existing); err != nil {
					return err
				}
			}

			if err := cf.apply(ctx, e, c, filepath.Dir(args[0])); err != nil {
				return err
			}
			saved, err := e.Submit(ctx)
			if err != nil {
				var se *editor.SubmitError
				if errors.As(err, &se) {
					for field, msg := range se.Fields {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", field, msg)
					}
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s version=%d lessons=%d\n", saved.ID.Hex(), saved.Version, saved.LessonCount())

			if review {
				res, err := c.RequestReview(ctx, saved.ID)
				if err != nil {
					return err
				}
				printResult(cmd, res)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&courseID, "id", "", "update this existing course instead of creating one")
	cmd.Flags().BoolVar(&review, "review", false, "request review after saving")
	return cmd
}

/* ---------------------------------- get -------------------------------- */

func newGetCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Print a course as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := g.client()
			if err != nil {
				return err
			}
			course, err := c.Get(commandContext(cmd), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), course)
		},
	}
}

/* --------------------------------- list -------------------------------- */

func newListCmd(g *globalOptions) *cobra.Command {
	var (
		opts      client.ListOptions
		published string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch published {
			case "":
			case "true", "false":
				b := published == "true"
				opts.Published = &b
			default:
				return fmt.Errorf("--published must be true or false")
			}
			c, err := g.client()
			if err != nil {
				return err
			}
			page, err := c.List(commandContext(cmd), opts)
			if err != nil {
				return err
			}
			writeCourseTable(cmd.OutOrStdout(), page.Courses)
			if page.HasNext {
				fmt.Fprintf(cmd.OutOrStdout(), "\nnext page: --after %s\n", page.NextCursor)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.Query, "query", "q", "", "title search")
	f.StringVar(&opts.Category, "category", "", "category filter")
	f.BoolVar(&opts.Mine, "mine", false, "only courses I own")
	f.StringVar(&opts.Status, "status", "", "approval status filter (pending|approved|rejected)")
	f.StringVar(&published, "published", "", "published filter (true|false)")
	f.StringVar(&opts.After, "after", "", "cursor for the next page")
	f.StringVar(&opts.Before, "before", "", "cursor for the previous page")
	f.IntVar(&opts.Limit, "limit", 0, "page size")
	return cmd
}

func writeCourseTable(w io.Writer, courses []models.Course) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tPUBLISHED\tLESSONS\tVERSION")
	for _, c := range courses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%d\t%d\n",
			c.ID.Hex(), c.Title, c.ApprovalStatus, c.Published, c.LessonCount(), c.Version)
	}
	_ = tw.Flush()
}

/* ------------------------------- workflow ------------------------------ */

func newReviewCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "review ID",
		Short: "Ask an admin to review a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCourse(g, cmd, args[0], func(c *client.Client, id primitive.ObjectID) (client.Result, error) {
				return c.RequestReview(commandContext(cmd), id)
			})
		},
	}
}

func newApproveCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "approve ID",
		Short: "Approve a course (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCourse(g, cmd, args[0], func(c *client.Client, id primitive.ObjectID) (client.Result, error) {
				return c.SetApproval(commandContext(cmd), id, models.ApprovalApproved, "")
			})
		},
	}
}

func newRejectCmd(g *globalOptions) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "reject ID",
		Short: "Reject a course with a reason (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCourse(g, cmd, args[0], func(c *client.Client, id primitive.ObjectID) (client.Result, error) {
				return c.SetApproval(commandContext(cmd), id, models.ApprovalRejected, reason)
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the course was rejected")
	return cmd
}

func newPublishCmd(g *globalOptions, publish bool) *cobra.Command {
	use, short := "publish ID", "Publish an approved course"
	if !publish {
		use, short = "unpublish ID", "Take a course off the catalog"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCourse(g, cmd, args[0], func(c *client.Client, id primitive.ObjectID) (client.Result, error) {
				return c.SetPublished(commandContext(cmd), id, publish)
			})
		},
	}
}

func withCourse(g *globalOptions, cmd *cobra.Command, rawID string, fn func(*client.Client, primitive.ObjectID) (client.Result, error)) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	c, err := g.client()
	if err != nil {
		return err
	}
	res, err := fn(c, id)
	if err != nil {
		return err
	}
	printResult(cmd, res)
	return nil
}
