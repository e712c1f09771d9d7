package sapmodel

import (
	"context"

	"github.com/oriys/oapi/internal/bridge"
)

// DesignSteel reads AISC 360-05/IBC 2006 steel design settings.
type DesignSteel struct {
	component
}

// GetOverwrite reads overwrite item for frame name. progDet reports
// whether the value is program determined.
func (d *DesignSteel) GetOverwrite(ctx context.Context, name string, item int32, value *bridge.Cell[float64], progDet *bridge.Cell[bool]) (int, error) {
	return d.call(ctx, "GetOverwrite", bridge.Text(name), bridge.Int(item), bridge.Out(value), bridge.Out(progDet))
}

func (d *DesignSteel) GetPreference(ctx context.Context, item int32, value *bridge.Cell[float64]) (int, error) {
	return d.call(ctx, "GetPreference", bridge.Int(item), bridge.Out(value))
}

// Analyze runs the analysis.
type Analyze struct {
	component
}

func (a *Analyze) RunAnalysis(ctx context.Context) (int, error) {
	return a.call(ctx, "RunAnalysis")
}

// AnalysisResultsSetup selects which cases results are reported for.
type AnalysisResultsSetup struct {
	component
}

func (s *AnalysisResultsSetup) DeselectAllCasesAndCombosForOutput(ctx context.Context) (int, error) {
	return s.call(ctx, "DeselectAllCasesAndCombosForOutput")
}

func (s *AnalysisResultsSetup) SetCaseSelectedForOutput(ctx context.Context, name string, selected bridge.Opt[bool]) (int, error) {
	return s.call(ctx, "SetCaseSelectedForOutput", bridge.Text(name), selected.Arg())
}

// AnalysisResults reads analysis results.
type AnalysisResults struct {
	component
}

// JointDisplOut receives the outputs of JointDispl. Each array has
// NumberResults entries.
type JointDisplOut struct {
	NumberResults *bridge.Cell[int32]
	Obj, Elm      *bridge.Cell[[]string]
	LoadCase      *bridge.Cell[[]string]
	StepType      *bridge.Cell[[]string]
	StepNum       *bridge.Cell[[]float64]
	U1, U2, U3    *bridge.Cell[[]float64]
	R1, R2, R3    *bridge.Cell[[]float64]
}

func (r *AnalysisResults) JointDispl(ctx context.Context, name string, itemTypeElm ItemTypeElm, out JointDisplOut) (int, error) {
	return r.call(ctx, "JointDispl", bridge.Text(name), bridge.Int(int32(itemTypeElm)),
		bridge.Out(out.NumberResults), bridge.Out(out.Obj), bridge.Out(out.Elm),
		bridge.Out(out.LoadCase), bridge.Out(out.StepType), bridge.Out(out.StepNum),
		bridge.Out(out.U1), bridge.Out(out.U2), bridge.Out(out.U3),
		bridge.Out(out.R1), bridge.Out(out.R2), bridge.Out(out.R3))
}
