package model

import internalmodel "github.com/goliatone/go-mdaform/internal/model"

// FieldKind re-exports the internal FieldKind enumeration.
type FieldKind = internalmodel.FieldKind

const (
	KindTextField  = internalmodel.KindTextField
	KindComboBox   = internalmodel.KindComboBox
	KindMoneyField = internalmodel.KindMoneyField
)

// Role re-exports the semantic role enumeration.
type Role = internalmodel.Role

const (
	RoleNone      = internalmodel.RoleNone
	RoleEmail     = internalmodel.RoleEmail
	RolePhone     = internalmodel.RolePhone
	RoleQuantity  = internalmodel.RoleQuantity
	RoleUnitPrice = internalmodel.RoleUnitPrice
	RoleAmount    = internalmodel.RoleAmount
	RoleItemCode  = internalmodel.RoleItemCode
	RoleItemName  = internalmodel.RoleItemName
)

// LegacyModuleName is the module hosting forms loaded without a Modules node.
const LegacyModuleName = internalmodel.LegacyModuleName

type Capabilities = internalmodel.Capabilities
type Geometry = internalmodel.Geometry
type ValidationSpec = internalmodel.ValidationSpec
type Field = internalmodel.Field
type DetailColumn = internalmodel.DetailColumn
type DetailRow = internalmodel.DetailRow
type Form = internalmodel.Form
type Module = internalmodel.Module
type Schema = internalmodel.Schema
type SchemaFormatError = internalmodel.SchemaFormatError

// ErrSchemaFormat matches any SchemaFormatError via errors.Is.
var ErrSchemaFormat = internalmodel.ErrSchemaFormat

// DefaultGeometry is applied when a field omits its placement attributes.
var DefaultGeometry = internalmodel.DefaultGeometry

var (
	Kinds           = internalmodel.Kinds
	ParseFieldKind  = internalmodel.ParseFieldKind
	ParseRole       = internalmodel.ParseRole
	InferFieldRole  = internalmodel.InferFieldRole
	InferFieldRoles = internalmodel.InferFieldRoles
	InferColumnRole = internalmodel.InferColumnRole
	ColumnIndex     = internalmodel.ColumnIndex
	CloneRows       = internalmodel.CloneRows
	NewForm         = internalmodel.NewForm
	NewModule       = internalmodel.NewModule
	NewSchema       = internalmodel.NewSchema
)
