package component

// Name labels an entity so scenes and scripts can find it again.
type Name string

var NameComponent = NewComponent[Name]()
