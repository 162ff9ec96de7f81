package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/jimezsa/jobwatch/internal/store"
	"github.com/jimezsa/jobwatch/internal/tracker"
)

type ResumeCmd struct {
	Upload ResumeUploadCmd `cmd:"" help:"Store a resume (.txt, .md or .html), replacing the current one."`
	Show   ResumeShowCmd   `cmd:"" help:"Show the stored resume."`
}

type ResumeUploadCmd struct {
	File string `arg:"" type:"existingfile" help:"Resume file."`
}

type ResumeShowCmd struct {
	Full bool `help:"Print the whole text instead of a summary."`
}

type resumeInfo struct {
	Filename   string    `json:"filename"`
	Characters int       `json:"characters"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func (c *ResumeUploadCmd) Run(ctx *Context) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	svc, err := ctx.service(serviceNeeds{})
	if err != nil {
		return err
	}
	resume, err := svc.UploadResume(ctx.ctx(), c.File, data)
	if err != nil {
		return err
	}
	ctx.UI.Successf("Stored %s (%d characters)", resume.Filename, utf8.RuneCountInString(resume.Content))
	return nil
}

func (c *ResumeShowCmd) Run(ctx *Context) error {
	st, err := ctx.Store()
	if err != nil {
		return err
	}
	resume, err := st.Resume(ctx.ctx())
	if errors.Is(err, store.ErrNotFound) {
		return tracker.ErrNoResume
	}
	if err != nil {
		return err
	}

	if c.Full {
		_, err := fmt.Fprintln(ctx.Out, resume.Content)
		return err
	}
	info := resumeInfo{
		Filename:   resume.Filename,
		Characters: utf8.RuneCountInString(resume.Content),
		UploadedAt: resume.UploadedAt,
	}
	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	_, err = fmt.Fprintf(ctx.Out, "%s\t%d characters\tuploaded %s\n", info.Filename, info.Characters, info.UploadedAt.Format(time.RFC3339))
	return err
}
