// Copyright 2026 OpenFlow E2E Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const evcPath = "/kytos/mef_eline/v2/evc"

// Tag is the VLAN tag of a UNI. Value is a VLAN ID, a list of ranges or a
// keyword such as "any" or "untagged".
type Tag struct {
	TagType any `json:"tag_type"`
	Value   any `json:"value"`
}

// UNI is an endpoint of an EVC.
type UNI struct {
	InterfaceID string `json:"interface_id"`
	Tag         *Tag   `json:"tag,omitempty"`
}

// Schedule triggers an action on an EVC, either once at Date or
// periodically by Frequency (crontab) or Interval.
type Schedule struct {
	ID        string         `json:"id,omitempty"`
	Date      string         `json:"date,omitempty"`
	Frequency string         `json:"frequency,omitempty"`
	Interval  map[string]int `json:"interval,omitempty"`
	Action    string         `json:"action,omitempty"`
}

// EVC is an Ethernet virtual circuit.
type EVC struct {
	ID                   string         `json:"id,omitempty"`
	Name                 string         `json:"name"`
	UNIA                 UNI            `json:"uni_a"`
	UNIZ                 UNI            `json:"uni_z"`
	Enabled              *bool          `json:"enabled,omitempty"`
	Active               bool           `json:"active,omitempty"`
	Archived             bool           `json:"archived,omitempty"`
	Dynamic              bool           `json:"dynamic_backup_path,omitempty"`
	ServiceLevel         int            `json:"service_level,omitempty"`
	SBPriority           *int           `json:"sb_priority,omitempty"`
	QueueID              *int           `json:"queue_id,omitempty"`
	Bandwidth            int            `json:"bandwidth,omitempty"`
	Owner                string         `json:"owner,omitempty"`
	PrimaryPath          []Link         `json:"primary_path,omitempty"`
	BackupPath           []Link         `json:"backup_path,omitempty"`
	CurrentPath          []Link         `json:"current_path,omitempty"`
	FailoverPath         []Link         `json:"failover_path,omitempty"`
	PrimaryConstraints   map[string]any `json:"primary_constraints,omitempty"`
	SecondaryConstraints map[string]any `json:"secondary_constraints,omitempty"`
	CircuitScheduler     []Schedule     `json:"circuit_scheduler,omitempty"`
	Metadata             map[string]any `json:"metadata,omitempty"`
	CreationTime         string         `json:"creation_time,omitempty"`
	RequestTime          string         `json:"request_time,omitempty"`
	StartDate            string         `json:"start_date,omitempty"`
	EndDate              string         `json:"end_date,omitempty"`
}

// ScheduledEVC is an entry of the schedule listing.
type ScheduledEVC struct {
	ScheduleID string   `json:"schedule_id"`
	CircuitID  string   `json:"circuit_id"`
	Name       string   `json:"name"`
	Schedule   Schedule `json:"schedule"`
}

// CreateEVC provisions an EVC and returns the ID assigned by the
// controller.
func (c *Client) CreateEVC(ctx context.Context, evc EVC) (string, error) {
	var reply struct {
		CircuitID string `json:"circuit_id"`
	}
	if err := c.call(ctx, http.MethodPost, evcPath+"/", nil, evc, &reply); err != nil {
		return "", err
	}
	return reply.CircuitID, nil
}

// EVCs lists the EVCs keyed by ID. Archived selects deleted circuits.
func (c *Client) EVCs(ctx context.Context, archived bool) (map[string]EVC, error) {
	var q url.Values
	if archived {
		q = url.Values{"archived": []string{strconv.FormatBool(archived)}}
	}
	var reply map[string]EVC
	err := c.call(ctx, http.MethodGet, evcPath+"/", q, nil, &reply)
	return reply, err
}

// EVC returns a single EVC.
func (c *Client) EVC(ctx context.Context, id string) (EVC, error) {
	var evc EVC
	err := c.call(ctx, http.MethodGet, evcPath+"/"+url.PathEscape(id), nil, nil, &evc)
	return evc, err
}

// UpdateEVC patches the given fields of an EVC.
func (c *Client) UpdateEVC(ctx context.Context, id string, patch map[string]any) error {
	return c.call(ctx, http.MethodPatch, evcPath+"/"+url.PathEscape(id), nil, patch, nil)
}

// DeleteEVC removes an EVC. Its record is archived by the controller.
func (c *Client) DeleteEVC(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, evcPath+"/"+url.PathEscape(id), nil, nil, nil)
}

// RedeployEVC removes and reinstalls the flows of an EVC.
func (c *Client) RedeployEVC(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodPatch, evcPath+"/"+url.PathEscape(id)+"/redeploy", nil,
		nil, nil)
}

// AddSchedule attaches a schedule to an EVC and returns the stored schedule.
func (c *Client) AddSchedule(ctx context.Context, circuitID string,
	s Schedule) (Schedule, error) {

	body := map[string]any{"circuit_id": circuitID, "schedule": s}
	var reply Schedule
	err := c.call(ctx, http.MethodPost, evcPath+"/schedule/", nil, body, &reply)
	return reply, err
}

// Schedules lists every schedule of every EVC.
func (c *Client) Schedules(ctx context.Context) ([]ScheduledEVC, error) {
	var reply []ScheduledEVC
	err := c.call(ctx, http.MethodGet, evcPath+"/schedule/", nil, nil, &reply)
	return reply, err
}

// UpdateSchedule patches a schedule.
func (c *Client) UpdateSchedule(ctx context.Context, id string, patch map[string]any) error {
	return c.call(ctx, http.MethodPatch, evcPath+"/schedule/"+url.PathEscape(id), nil,
		patch, nil)
}

// DeleteSchedule removes a schedule.
func (c *Client) DeleteSchedule(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, evcPath+"/schedule/"+url.PathEscape(id), nil,
		nil, nil)
}
