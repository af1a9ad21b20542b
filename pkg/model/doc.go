// Package model defines the immutable schema model produced by loading a form
// metadata document: modules own ordered forms, forms own ordered fields and
// optional detail columns. Field kinds form a closed set (TextField, ComboBox,
// MoneyField) with a capability set that tells renderers whether to expect
// options or a maximum length. Roles mark fields and detail columns that carry
// domain meaning (email, phone, quantity, unit price, amount, item code, item
// name); documents may declare them with a Role attribute, otherwise they are
// inferred from names. Types are defined in internal/model and re-exported
// here.
package model
