package stepwise

import "github.com/YuminosukeSato/stepwise/interaction"

func interactionSpec(name string, constituents ...string) interaction.Spec {
	return interaction.Spec{Name: name, Constituents: constituents}
}
