package sapmodel

import (
	"context"

	"github.com/oriys/oapi/internal/bridge"
)

// SapObject is the application object, the root of every other component.
type SapObject struct {
	component
	version Version
}

// Version returns the API generation the object was opened for.
func (s *SapObject) Version() Version { return s.version }

// Bridge returns the underlying bridge.
func (s *SapObject) Bridge() *bridge.Bridge { return s.b }

// ApplicationStartOptions are the optional inputs of ApplicationStart.
type ApplicationStartOptions struct {
	Units    bridge.Opt[int32]
	Visible  bridge.Opt[bool]
	FileName bridge.Opt[string]
}

// ApplicationStart starts the program, optionally opening FileName.
func (s *SapObject) ApplicationStart(ctx context.Context, o ApplicationStartOptions) (int, error) {
	return s.call(ctx, "ApplicationStart", o.Units.Arg(), o.Visible.Arg(), o.FileName.Arg())
}

// ApplicationExit closes the program, saving the model first when fileSave
// is true.
func (s *SapObject) ApplicationExit(ctx context.Context, fileSave bool) (int, error) {
	return s.call(ctx, "ApplicationExit", bridge.Bool(fileSave))
}

// SapModel returns the model object.
func (s *SapObject) SapModel() *SapModel {
	return &SapModel{component: s.sub("cSapModel")}
}

// SapModel is the model object.
type SapModel struct {
	component
}

// InitializeNewModel clears the current model. Units defaults to kip_in_F.
func (m *SapModel) InitializeNewModel(ctx context.Context, units bridge.Opt[int32]) (int, error) {
	return m.call(ctx, "InitializeNewModel", units.Arg())
}

func (m *SapModel) SetPresentUnits(ctx context.Context, u Units) (int, error) {
	return m.call(ctx, "SetPresentUnits", bridge.Int(int32(u)))
}

// GetPresentUnits reports the units through its status: the program
// returns the eUnits value instead of an error code.
func (m *SapModel) GetPresentUnits(ctx context.Context) (Units, error) {
	status, err := m.call(ctx, "GetPresentUnits")
	return Units(status), err
}

func (m *SapModel) SetModelIsLocked(ctx context.Context, lock bool) (int, error) {
	return m.call(ctx, "SetModelIsLocked", bridge.Bool(lock))
}

func (m *SapModel) File() *File                 { return &File{m.sub("cFile")} }
func (m *SapModel) PropMaterial() *PropMaterial { return &PropMaterial{m.sub("cPropMaterial")} }
func (m *SapModel) PropFrame() *PropFrame       { return &PropFrame{m.sub("cPropFrame")} }
func (m *SapModel) PropArea() *PropArea         { return &PropArea{m.sub("cPropArea")} }
func (m *SapModel) PointObj() *PointObj         { return &PointObj{m.sub("cPointObj")} }
func (m *SapModel) FrameObj() *FrameObj         { return &FrameObj{m.sub("cFrameObj")} }
func (m *SapModel) AreaObj() *AreaObj           { return &AreaObj{m.sub("cAreaObj")} }
func (m *SapModel) LoadPatterns() *LoadPatterns { return &LoadPatterns{m.sub("cLoadPatterns")} }
func (m *SapModel) AutoSeismic() *AutoSeismic   { return &AutoSeismic{m.sub("cAutoSeismic")} }
func (m *SapModel) DesignSteel() *DesignSteel   { return &DesignSteel{m.sub("cDStAISC360_05_IBC2006")} }
func (m *SapModel) Analyze() *Analyze           { return &Analyze{m.sub("cAnalyze")} }
func (m *SapModel) Results() *AnalysisResults   { return &AnalysisResults{m.sub("cAnalysisResults")} }
func (m *SapModel) ResultsSetup() *AnalysisResultsSetup {
	return &AnalysisResultsSetup{m.sub("cAnalysisResultsSetup")}
}

// File is the model file component.
type File struct {
	component
}

func (f *File) NewBlank(ctx context.Context) (int, error) {
	return f.call(ctx, "NewBlank")
}

func (f *File) OpenFile(ctx context.Context, fileName string) (int, error) {
	return f.call(ctx, "OpenFile", bridge.Text(fileName))
}

// Save saves the model, to fileName when set or to its current file.
func (f *File) Save(ctx context.Context, fileName bridge.Opt[string]) (int, error) {
	return f.call(ctx, "Save", fileName.Arg())
}
