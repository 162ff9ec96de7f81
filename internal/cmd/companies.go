package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/jimezsa/jobwatch/internal/export"
	"github.com/jimezsa/jobwatch/internal/models"
	"github.com/jimezsa/jobwatch/internal/store"
	"github.com/jimezsa/jobwatch/internal/tracker"
)

type CompaniesCmd struct {
	List   CompaniesListCmd   `cmd:"" default:"1" help:"List tracked companies."`
	Add    CompaniesAddCmd    `cmd:"" help:"Start tracking a career page."`
	Remove CompaniesRemoveCmd `cmd:"" aliases:"rm" help:"Stop tracking a company and drop its jobs."`
}

type CompaniesListCmd struct{}

type CompaniesAddCmd struct {
	Name string `arg:"" help:"Company name."`
	URL  string `arg:"" name:"career-url" help:"Career page URL."`
}

type CompaniesRemoveCmd struct {
	ID int64 `arg:"" help:"Company id (see companies list)."`
}

func (c *CompaniesListCmd) Run(ctx *Context) error {
	svc, err := ctx.service(serviceNeeds{})
	if err != nil {
		return err
	}
	companies, err := svc.ListCompanies(ctx.ctx())
	if err != nil {
		return err
	}
	return emit(ctx, func(w io.Writer, format export.Format, opts export.WriteOptions) error {
		return export.WriteCompanies(w, companies, format, opts)
	})
}

func (c *CompaniesAddCmd) Run(ctx *Context) error {
	svc, err := ctx.service(serviceNeeds{})
	if err != nil {
		return err
	}
	company, err := svc.AddCompany(ctx.ctx(), tracker.CompanyInput{Name: c.Name, CareerURL: c.URL})
	if errors.Is(err, store.ErrDuplicateURL) {
		return fmt.Errorf("%s: %w", c.URL, err)
	}
	if err != nil {
		return err
	}
	if ctx.JSONOutput {
		return emit(ctx, func(w io.Writer, format export.Format, opts export.WriteOptions) error {
			return export.WriteCompanies(w, []models.Company{*company}, format, opts)
		})
	}
	ctx.UI.Successf("Tracking %s (id %d)", company.Name, company.ID)
	return nil
}

func (c *CompaniesRemoveCmd) Run(ctx *Context) error {
	svc, err := ctx.service(serviceNeeds{})
	if err != nil {
		return err
	}
	if err := svc.RemoveCompany(ctx.ctx(), c.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("company %d: %w", c.ID, err)
		}
		return err
	}
	ctx.UI.Successf("Removed company %d", c.ID)
	return nil
}
