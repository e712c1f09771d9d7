package sapmodel

import (
	"fmt"

	"github.com/oriys/oapi/internal/bridge"
)

// Units is the program's eUnits enumeration.
type Units int32

const (
	LbInF Units = iota + 1
	LbFtF
	KipInF
	KipFtF
	KNmmC
	KNmC
	KgfMmC
	KgfMC
	NmmC
	NmC
	TonMmC
	TonMC
	KNcmC
	KgfCmC
	NcmC
	TonCmC
)

var unitNames = [...]string{"", "lb_in_F", "lb_ft_F", "kip_in_F", "kip_ft_F", "kN_mm_C", "kN_m_C",
	"kgf_mm_C", "kgf_m_C", "N_mm_C", "N_m_C", "Ton_mm_C", "Ton_m_C", "kN_cm_C", "kgf_cm_C", "N_cm_C", "Ton_cm_C"}

func (u Units) String() string {
	if u >= LbInF && u <= TonCmC {
		return unitNames[u]
	}
	return fmt.Sprintf("Units(%d)", int32(u))
}

// Opt returns u as a set optional argument.
func (u Units) Opt() bridge.Opt[int32] { return bridge.Some(int32(u)) }

// MatType is the eMatType enumeration.
type MatType int32

const (
	MatSteel MatType = iota + 1
	MatConcrete
	MatNoDesign
	MatAluminum
	MatColdFormed
	MatRebar
	MatTendon
)

var matNames = [...]string{"", "Steel", "Concrete", "NoDesign", "Aluminum", "ColdFormed", "Rebar", "Tendon"}

func (m MatType) String() string {
	if m >= MatSteel && m <= MatTendon {
		return matNames[m]
	}
	return fmt.Sprintf("MatType(%d)", int32(m))
}

// ItemType selects what an assignment applies to.
type ItemType int32

const (
	Object ItemType = iota
	Group
	SelectedObjects
)

func (t ItemType) String() string {
	switch t {
	case Object:
		return "Object"
	case Group:
		return "Group"
	case SelectedObjects:
		return "SelectedObjects"
	}
	return fmt.Sprintf("ItemType(%d)", int32(t))
}

// Opt returns t as a set optional argument.
func (t ItemType) Opt() bridge.Opt[int32] { return bridge.Some(int32(t)) }

// ItemTypeElm selects which elements a results request covers.
type ItemTypeElm int32

const (
	ObjectElm ItemTypeElm = iota
	Element
	GroupElm
	SelectionElm
)

func (t ItemTypeElm) String() string {
	switch t {
	case ObjectElm:
		return "ObjectElm"
	case Element:
		return "Element"
	case GroupElm:
		return "GroupElm"
	case SelectionElm:
		return "SelectionElm"
	}
	return fmt.Sprintf("ItemTypeElm(%d)", int32(t))
}

// LoadPatternType is the eLoadPatternType enumeration, up to PatternLive.
type LoadPatternType int32

const (
	LoadDead LoadPatternType = iota + 1
	LoadSuperDead
	LoadLive
	LoadReduceLive
	LoadQuake
	LoadWind
	LoadSnow
	LoadOther
	LoadMove
	LoadTemperature
	LoadRoofLive
	LoadNotional
	LoadPatternLive
)

var loadPatternNames = [...]string{"", "Dead", "SuperDead", "Live", "ReduceLive", "Quake", "Wind", "Snow",
	"Other", "Move", "Temperature", "RoofLive", "Notional", "PatternLive"}

func (t LoadPatternType) String() string {
	if t >= LoadDead && t <= LoadPatternLive {
		return loadPatternNames[t]
	}
	return fmt.Sprintf("LoadPatternType(%d)", int32(t))
}
