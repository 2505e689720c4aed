package analysis

import (
	"context"

	"github.com/luminsql/lumin/pkg/catalog"
	"github.com/luminsql/lumin/pkg/dialect"
	"github.com/luminsql/lumin/pkg/parser"
)

// Report is the full outcome of analyzing one statement. Err carries the
// analysis failure, if any; the side-effect logs are populated either way,
// up to the point analysis stopped.
type Report struct {
	Statement *parser.SelectStmt
	Explain   bool
	Err       error

	AccessEvents      []AccessEvent
	PrivilegeRequests []PrivilegeRequest
	MissingObjects    []string
}

// OK reports whether analysis completed without error.
func (r *Report) OK() bool {
	return r.Err == nil
}

// AnalyzeSQL parses and analyzes one statement. A parse failure is returned
// as the error; an analysis failure comes back inside the report so callers
// can still inspect the logs collected before the failure.
func AnalyzeSQL(ctx context.Context, sql string, cat catalog.Catalog, d *dialect.Dialect, qctx QueryContext, acfg AuthzConfig) (*Report, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}

	a := NewAnalyzer(cat, d, qctx, acfg)
	analysisErr := AnalyzeStatement(ctx, stmt, a)

	return &Report{
		Statement:         stmt,
		Explain:           a.IsExplain(),
		Err:               analysisErr,
		AccessEvents:      a.AccessEvents(),
		PrivilegeRequests: a.PrivilegeRequests(),
		MissingObjects:    a.MissingObjects(),
	}, nil
}
