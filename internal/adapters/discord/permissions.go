package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/reaction-roles-bot/internal/app/service"
)

// guildPermissions: permisos a nivel servidor (sin overwrites de canal).
func guildPermissions(guildID, ownerID, userID string, roles []*discordgo.Role, memberRoles []string) int64 {
	// Owner
	if userID == ownerID {
		return discordgo.PermissionAll
	}

	has := make(map[string]struct{}, len(memberRoles))
	for _, rid := range memberRoles {
		has[rid] = struct{}{}
	}

	var perms int64
	for _, ro := range roles {
		// @everyone tiene el mismo id que el guild
		if _, ok := has[ro.ID]; ok || ro.ID == guildID {
			perms |= ro.Permissions
		}
	}

	// Administrator bit
	if perms&discordgo.PermissionAdministrator != 0 {
		return discordgo.PermissionAll
	}
	return perms
}

func capabilities(perms int64) service.Capabilities {
	return service.Capabilities{
		AssignRoles: perms&discordgo.PermissionManageRoles != 0,
		React:       perms&discordgo.PermissionAddReactions != 0,
	}
}
